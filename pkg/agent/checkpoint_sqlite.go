package agent

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSaver is a durable Checkpointer. Thread state survives process
// restarts; the schema is one row per thread holding the serialized
// state.
type SQLiteSaver struct {
	db *sql.DB
}

func NewSQLiteSaver(path string) (*SQLiteSaver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id  TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoint table: %w", err)
	}

	return &SQLiteSaver{db: db}, nil
}

func (s *SQLiteSaver) Load(threadID string) (*State, error) {
	var raw string
	err := s.db.QueryRow(`SELECT state FROM checkpoints WHERE thread_id = ?`, threadID).Scan(&raw)
	if err == sql.ErrNoRows {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return &state, nil
}

func (s *SQLiteSaver) Save(threadID string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO checkpoints (thread_id, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (thread_id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		threadID, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}
