// ABOUTME: Fixed lookup table from external metric names to canonical types.
// ABOUTME: Unrecognized names become error entries, never silent drops.
package ingest

import (
	"strings"

	"github.com/harperreed/vitals/internal/models"
)

// metricNameMap maps external collection names, across the naming
// conventions of the supported apps, onto canonical metric types.
var metricNameMap = map[string]models.MetricType{
	"heart_rate":             models.MetricHeartRate,
	"heartrate":              models.MetricHeartRate,
	"hr":                     models.MetricHeartRate,
	"resting_heart_rate":     models.MetricRestingHR,
	"restingheartrate":       models.MetricRestingHR,
	"resting_hr":             models.MetricRestingHR,
	"rhr":                    models.MetricRestingHR,
	"hrv":                    models.MetricHRV,
	"heart_rate_variability": models.MetricHRV,
	"heartratevariability":   models.MetricHRV,
	"rmssd":                  models.MetricHRV,
	"respiratory_rate":       models.MetricRespiratoryRate,
	"respiratoryrate":        models.MetricRespiratoryRate,
	"breath_rate":            models.MetricRespiratoryRate,
	"spo2":                   models.MetricSpO2,
	"blood_oxygen":           models.MetricSpO2,
	"bloodoxygen":            models.MetricSpO2,
	"oxygen_saturation":      models.MetricSpO2,
	"body_temp":              models.MetricBodyTemp,
	"body_temperature":       models.MetricBodyTemp,
	"temperature":            models.MetricBodyTemp,
	"steps":                  models.MetricSteps,
	"step_count":             models.MetricSteps,
	"stepcount":              models.MetricSteps,
	"active_calories":        models.MetricActiveCalories,
	"activecalories":         models.MetricActiveCalories,
	"active_energy":          models.MetricActiveCalories,
	"calories_burned":        models.MetricActiveCalories,
	"distance":               models.MetricDistance,
	"distance_km":            models.MetricDistance,
	"weight":                 models.MetricWeight,
	"body_mass":              models.MetricWeight,
	"bodymass":               models.MetricWeight,
	"body_fat":               models.MetricBodyFat,
	"bodyfat":                models.MetricBodyFat,
	"body_fat_percentage":    models.MetricBodyFat,
}

// canonicalMetricType resolves an external metric collection name.
func canonicalMetricType(name string) (models.MetricType, bool) {
	mt, ok := metricNameMap[strings.ToLower(strings.TrimSpace(name))]
	return mt, ok
}

// sleepCollections and workoutCollections are the payload keys handled by
// the dedicated block normalizers instead of the metric mapper.
var sleepCollections = map[string]bool{
	"sleep":          true,
	"sleep_sessions": true,
	"sleepsessions":  true,
}

var workoutCollections = map[string]bool{
	"workouts":   true,
	"activities": true,
	"exercise":   true,
}
