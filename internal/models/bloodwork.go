// ABOUTME: BloodWork model: an append-only lab panel of named markers.
// ABOUTME: The most recent panel by test date is current for bio-age scoring.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Marker is a single named blood marker from a lab panel.
type Marker struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
}

// Validate checks marker required fields.
func (m *Marker) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("marker name is required")
	}
	if m.Unit == "" {
		return fmt.Errorf("marker %s: unit is required", m.Name)
	}
	return nil
}

// BloodWork represents one uploaded lab panel.
type BloodWork struct {
	ID        uuid.UUID
	UserID    string
	TestDate  string // YYYY-MM-DD
	LabName   *string
	Markers   []Marker
	CreatedAt time.Time
}

// NewBloodWork creates a panel for a user and test date.
func NewBloodWork(userID, testDate string, markers []Marker) *BloodWork {
	return &BloodWork{
		ID:        uuid.New(),
		UserID:    userID,
		TestDate:  testDate,
		Markers:   markers,
		CreatedAt: time.Now().UTC(),
	}
}

// WithLabName sets the lab name.
func (b *BloodWork) WithLabName(name string) *BloodWork {
	b.LabName = &name
	return b
}

// Validate checks the panel and every marker in it.
func (b *BloodWork) Validate() error {
	if b.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := time.Parse(time.DateOnly, b.TestDate); err != nil {
		return fmt.Errorf("invalid test date %q", b.TestDate)
	}
	if len(b.Markers) == 0 {
		return fmt.Errorf("at least one marker is required")
	}
	for i := range b.Markers {
		if err := b.Markers[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
