package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskboard/internal/action"
	"taskboard/internal/model"
	"taskboard/internal/state"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteFile = "taskboard.sqlite"

// SQLite stores groups, tasks, comments and the event log in <dir>/taskboard.sqlite.
type SQLite struct {
	path string
	db   *sql.DB
}

var _ Backend = (*SQLite)(nil)

func SQLitePath(dir string) string {
	return filepath.Join(filepath.Clean(dir), sqliteFile)
}

func OpenSQLite(ctx context.Context, dir string) (*SQLite, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("backend: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := SQLitePath(dir)
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragmas in effect for every statement.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	if _, err := ensureMetaUUID(ctx, db, "board_id"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{path: path, db: db}, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS task_groups (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			group_id TEXT NOT NULL,
			name TEXT NOT NULL,
			is_complete INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_group ON tasks(group_id);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			task_id TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id, created_at_unixms);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, seq);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func ensureMetaUUID(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLite) Load(ctx context.Context) (state.Tree, error) {
	out := state.Empty()
	var err error
	if out.Groups, err = readJSONRows[model.Group](ctx, s.db, `SELECT json FROM task_groups ORDER BY position, id`); err != nil {
		return state.Tree{}, err
	}
	if out.Tasks, err = readJSONRows[model.Task](ctx, s.db, `SELECT json FROM tasks ORDER BY position, id`); err != nil {
		return state.Tree{}, err
	}
	if out.Comments, err = readJSONRows[model.Comment](ctx, s.db, `SELECT json FROM comments ORDER BY position, id`); err != nil {
		return state.Tree{}, err
	}
	return out.Normalize(), nil
}

// Replace uses a replace-all strategy inside one transaction and records a replace event.
func (s *SQLite) Replace(ctx context.Context, t state.Tree) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"task_groups", "tasks", "comments"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	nowMs := time.Now().UTC().UnixMilli()
	for i, g := range t.Groups {
		raw, _ := json.Marshal(g)
		if _, err := tx.ExecContext(ctx, `INSERT INTO task_groups(id, position, name, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
			g.ID, i, g.Name, string(raw), nowMs); err != nil {
			return err
		}
	}
	for i, task := range t.Tasks {
		if err := upsertTask(ctx, tx, i, task, nowMs); err != nil {
			return err
		}
	}
	for i, c := range t.Comments {
		if err := insertComment(ctx, tx, i, c, nowMs); err != nil {
			return err
		}
	}
	payload := map[string]any{"groups": len(t.Groups), "tasks": len(t.Tasks), "comments": len(t.Comments)}
	if err := appendEvent(ctx, tx, "REPLACE_STATE", "board", payload, nowMs); err != nil {
		return err
	}
	return tx.Commit()
}

// Apply writes the row touched by a, taken from next, and appends an event.
func (s *SQLite) Apply(ctx context.Context, a action.Action, next state.Tree) error {
	if a == nil {
		return errors.New("backend: nil action")
	}
	payload, err := action.Payload(a)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	switch a := a.(type) {
	case action.AddCommentAction:
		idx := -1
		for i, c := range next.Comments {
			if c.ID == a.CommentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("backend: comment %q not in state", a.CommentID)
		}
		if err := insertComment(ctx, tx, idx, next.Comments[idx], nowMs); err != nil {
			return err
		}
	default:
		idx := next.TaskIndex(a.TaskID())
		if idx < 0 {
			return fmt.Errorf("backend: task %q not in state", a.TaskID())
		}
		if err := upsertTask(ctx, tx, idx, next.Tasks[idx], nowMs); err != nil {
			return err
		}
	}
	if err := appendEvent(ctx, tx, string(a.Type()), a.TaskID(), payload, nowMs); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertTask(ctx context.Context, tx *sql.Tx, position int, t model.Task, nowMs int64) error {
	raw, _ := json.Marshal(t)
	_, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, position, group_id, name, is_complete, json, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id,
			name = excluded.name,
			is_complete = excluded.is_complete,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		t.ID, position, t.Group, t.Name, boolToInt(t.IsComplete), string(raw), nowMs)
	return err
}

func insertComment(ctx context.Context, tx *sql.Tx, position int, c model.Comment, nowMs int64) error {
	raw, _ := json.Marshal(c)
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO comments(id, position, task_id, created_at_unixms, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		c.ID, position, c.TaskID, c.CreatedAt.UTC().UnixMilli(), string(raw), nowMs)
	return err
}

func appendEvent(ctx context.Context, tx *sql.Tx, typ, entityID string, payload any, nowMs int64) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(event_id, type, entity_id, issued_at_unixms, payload_json) VALUES(?, ?, ?, ?, ?)`,
		newEventID(), typ, entityID, nowMs, string(raw))
	return err
}

func (s *SQLite) Events(ctx context.Context, limit int) ([]model.Event, error) {
	q := `SELECT event_id, issued_at_unixms, type, entity_id, payload_json FROM events ORDER BY seq DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var id, typ, entityID, payloadJSON string
		var tsMs int64
		if err := rows.Scan(&id, &tsMs, &typ, &entityID, &payloadJSON); err != nil {
			return nil, err
		}
		var payload any
		_ = json.Unmarshal([]byte(payloadJSON), &payload)
		out = append(out, model.Event{
			ID:       id,
			TS:       time.UnixMilli(tsMs).UTC(),
			Type:     typ,
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Newest first from the query; callers read oldest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []model.Event{}
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
