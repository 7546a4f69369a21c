// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Natural keys are enforced as unique indexes for atomic upserts.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metrics (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		metric_type TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		source TEXT,
		recorded_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sleep_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		sleep_date TEXT NOT NULL,
		bedtime DATETIME NOT NULL,
		wake_time DATETIME NOT NULL,
		total_minutes INTEGER NOT NULL,
		in_bed_minutes INTEGER NOT NULL,
		deep_sleep_minutes INTEGER NOT NULL DEFAULT 0,
		rem_sleep_minutes INTEGER NOT NULL DEFAULT 0,
		light_sleep_minutes INTEGER NOT NULL DEFAULT 0,
		awake_minutes INTEGER NOT NULL DEFAULT 0,
		sleep_latency_minutes INTEGER,
		hrv_avg REAL,
		resting_hr REAL,
		respiratory_rate REAL,
		sleep_score INTEGER,
		efficiency REAL,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		workout_type TEXT NOT NULL,
		name TEXT,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		calories_burned REAL,
		heart_rate_avg REAL,
		heart_rate_max REAL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_scores (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		score_date TEXT NOT NULL,
		sleep_score INTEGER,
		recovery_score INTEGER,
		strain_score REAL,
		readiness_score INTEGER,
		components TEXT,
		computed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bloodwork (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		test_date TEXT NOT NULL,
		lab_name TEXT,
		markers TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		birth_date TEXT
	);

	CREATE UNIQUE INDEX IF NOT EXISTS ux_metrics_natural
		ON metrics(user_id, metric_type, recorded_at);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_sleep_natural
		ON sleep_sessions(user_id, sleep_date, source);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_workouts_natural
		ON workouts(user_id, started_at, workout_type);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_scores_natural
		ON daily_scores(user_id, score_date);

	CREATE INDEX IF NOT EXISTS idx_metrics_user_type_recorded
		ON metrics(user_id, metric_type, recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sleep_user_date
		ON sleep_sessions(user_id, sleep_date DESC);
	CREATE INDEX IF NOT EXISTS idx_workouts_user_started
		ON workouts(user_id, started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_bloodwork_user_date
		ON bloodwork(user_id, test_date DESC);
	`

	_, err := d.db.Exec(schema)
	return err
}
