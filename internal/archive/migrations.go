package archive

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created_at TIMESTAMP,
    archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    category_count INTEGER NOT NULL DEFAULT 0,
    entry_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_name ON sessions(name);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    category TEXT NOT NULL,
    rank TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    first_name TEXT,
    last_name TEXT,
    team TEXT,
    birth_year TEXT,
    gender TEXT,
    finish_time TEXT NOT NULL,
    elapsed_time TEXT NOT NULL,
    is_valid_id BOOLEAN NOT NULL DEFAULT TRUE,
    is_dnf BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_session_id ON results(session_id);
CREATE INDEX IF NOT EXISTS idx_results_category ON results(category);
`
