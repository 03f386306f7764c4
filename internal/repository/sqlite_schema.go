package repository

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS signals (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol            TEXT    NOT NULL,
		signal_type       TEXT    NOT NULL,
		direction         TEXT    NOT NULL,
		detector          TEXT    NOT NULL,
		entry_price       REAL    NOT NULL,
		target_price      REAL,
		stop_loss         REAL,
		strength          INTEGER NOT NULL DEFAULT 50,
		reason            TEXT,
		bar_index         INTEGER NOT NULL DEFAULT 0,
		indicator_data    TEXT,
		detected_at       INTEGER NOT NULL,
		created_at        INTEGER NOT NULL,
		status            TEXT    NOT NULL DEFAULT 'ACTIVE',
		validation_result TEXT,
		final_price       REAL,
		profit_loss       REAL,
		closed_at         INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_status ON signals (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_created ON signals (created_at)`,
	`CREATE TABLE IF NOT EXISTS signal_validations (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_id        INTEGER NOT NULL REFERENCES signals (id),
		check_time       INTEGER NOT NULL,
		current_price    REAL    NOT NULL,
		price_change_pct REAL    NOT NULL,
		status           TEXT    NOT NULL,
		notes            TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_validations_signal ON signal_validations (signal_id, check_time)`,
	`CREATE TABLE IF NOT EXISTS pump_dump_alerts (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol         TEXT    NOT NULL,
		alert_type     TEXT    NOT NULL,
		direction      TEXT    NOT NULL,
		price_at_alert REAL    NOT NULL,
		price_change   REAL    NOT NULL,
		volume_change  REAL    NOT NULL,
		strength       INTEGER NOT NULL,
		reason         TEXT,
		detected_at    INTEGER NOT NULL,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_created ON pump_dump_alerts (created_at)`,
}
