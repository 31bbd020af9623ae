package ledger

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts REAL NOT NULL,
	type TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type_seq ON events(type, seq);
CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
`
