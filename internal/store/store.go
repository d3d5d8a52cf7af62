// Package store persists finished analysis runs to a SQL database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/oasci/vaxstats/common"
	"github.com/oasci/vaxstats/model"
	"github.com/oasci/vaxstats/utils"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// Backend names a database flavour.
type Backend string

const (
	SQLiteBackend     Backend = "sqlite"
	MySQLBackend      Backend = "mysql"
	PostgreSQLBackend Backend = "postgresql"
	NoneBackend       Backend = "none"
)

// DefaultSQLitePath is used when the sqlite backend has no DSN.
const DefaultSQLitePath = "vaxstats.db"

const runsTable = "vaxstats_analysis_runs"

func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case SQLiteBackend, MySQLBackend, PostgreSQLBackend, NoneBackend:
		return b, nil
	case "":
		return NoneBackend, nil
	}
	return "", fmt.Errorf("store backend %q (must be sqlite, mysql, postgresql, none): %w", s,
		common.ErrorInvalidValue)
}

// Run is one stored analysis.
type Run struct {
	ID          int64                `json:"run_id"`
	Source      string               `json:"source"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Labels      map[string]string    `json:"labels,omitempty"`
	Options     map[string]any       `json:"options,omitempty"`
	Result      model.AnalysisResult `json:"result"`
	Fever       int                  `json:"fever_count"`
	Hypothermia int                  `json:"hypothermia_count"`
}

// Store writes and lists runs. The none backend accepts every call and keeps
// nothing.
type Store struct {
	db      *sql.DB
	backend Backend
}

// Open connects to the backend and creates the runs table if needed.
func Open(ctx context.Context, backend Backend, dsn string) (*Store, error) {
	logger := utils.GetLogger(ctx)

	var driverName string
	switch backend {
	case NoneBackend:
		return &Store{backend: backend}, nil
	case SQLiteBackend:
		driverName = "sqlite"
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
	case MySQLBackend:
		driverName = "mysql"
	case PostgreSQLBackend:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported backend %q: %w", string(backend), common.ErrorInvalidValue)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == SQLiteBackend {
		// a single connection avoids "database is locked"
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	if _, err := db.ExecContext(ctx, createRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	logger.Debug("opened run store", zap.String("backend", string(backend)))
	return &Store{db: db, backend: backend}, nil
}

func createRunsQuery(backend Backend) string {
	switch backend {
	case MySQLBackend:
		return `CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
			run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at DATETIME(6) NOT NULL,
			finished_at DATETIME(6) NOT NULL,
			labels TEXT,
			options TEXT,
			result TEXT NOT NULL,
			fever_count INT NOT NULL,
			hypothermia_count INT NOT NULL
		)`
	case PostgreSQLBackend:
		return `CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
			run_id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			labels TEXT,
			options TEXT,
			result TEXT NOT NULL,
			fever_count INT NOT NULL,
			hypothermia_count INT NOT NULL
		)`
	default:
		return `CREATE TABLE IF NOT EXISTS ` + runsTable + ` (
			run_id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			labels TEXT,
			options TEXT,
			result TEXT NOT NULL,
			fever_count INTEGER NOT NULL,
			hypothermia_count INTEGER NOT NULL
		)`
	}
}

// SaveRun inserts run and returns its id. The none backend returns 0.
func (s *Store) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal labels: %w", err)
	}
	options, err := json.Marshal(run.Options)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal options: %w", err)
	}
	result, err := json.Marshal(run.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}
	args := []any{
		run.Source,
		s.formatTime(run.StartedAt),
		s.formatTime(run.FinishedAt),
		string(labels),
		string(options),
		string(result),
		run.Result.Fever.Duration,
		run.Result.Hypothermia.Duration,
	}

	const columns = `(source, started_at, finished_at, labels, options, result, fever_count, hypothermia_count)`
	var id int64
	switch s.backend {
	case PostgreSQLBackend:
		query := `INSERT INTO ` + runsTable + ` ` + columns +
			` VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING run_id`
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	default:
		query := `INSERT INTO ` + runsTable + ` ` + columns + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read run id: %w", err)
		}
	}

	utils.GetLogger(ctx).Info("stored run", zap.Int64("runID", id), zap.String("backend", string(s.backend)))
	return id, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, nil
	}

	query := `SELECT run_id, source, started_at, finished_at, labels, options, result, fever_count, hypothermia_count
		FROM ` + runsTable + ` ORDER BY run_id DESC`
	var args []any
	if limit > 0 {
		if s.backend == PostgreSQLBackend {
			query += ` LIMIT $1`
		} else {
			query += ` LIMIT ?`
		}
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var res []Run
	for rows.Next() {
		var (
			run                     Run
			started, finished       any
			labels, options, result sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Source, &started, &finished, &labels, &options, &result,
			&run.Fever, &run.Hypothermia); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("run %d started_at: %w", run.ID, err)
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("run %d finished_at: %w", run.ID, err)
		}
		if err := unmarshalColumn(labels, &run.Labels); err != nil {
			return nil, fmt.Errorf("run %d labels: %w", run.ID, err)
		}
		if err := unmarshalColumn(options, &run.Options); err != nil {
			return nil, fmt.Errorf("run %d options: %w", run.ID, err)
		}
		if err := unmarshalColumn(result, &run.Result); err != nil {
			return nil, fmt.Errorf("run %d result: %w", run.ID, err)
		}
		res = append(res, run)
	}
	return res, rows.Err()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// formatTime stores SQLite timestamps as text and hands time.Time to the
// other drivers.
func (s *Store) formatTime(t time.Time) any {
	if s.backend == SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return parseTimeText(string(t))
	}
	return time.Time{}, fmt.Errorf("unexpected timestamp type %T: %w", v, common.ErrorInvalidValue)
}

// parseTimeText covers MySQL DATETIME text when the DSN lacks parseTime=true.
func parseTimeText(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05.999999", s)
}

func unmarshalColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
