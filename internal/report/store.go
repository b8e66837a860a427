// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report persists discovery runs and citation metric sets and
// exports them as YAML or JSON.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

const (
	indexDir   = "index"
	dbFile     = "visibility.db"
	defaultDir = "visibility"

	// timeLayout is fixed width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"

	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// Run kinds.
const (
	KindDiscovery = "discovery"
	KindCitation  = "citation"
)

// GlobalModel is the model column value of a competitor's global citation row.
const GlobalModel = "global"

// ErrNotFound is returned when a run id is not in the store.
var ErrNotFound = eris.New("run not found")

// Store is the report database.
type Store struct {
	db     *sqlx.DB
	dir    string
	driver string
}

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID         string `db:"id" json:"id" yaml:"id"`
	Kind       string `db:"kind" json:"kind" yaml:"kind"`
	Company    string `db:"company" json:"company,omitempty" yaml:"company,omitempty"`
	Industry   string `db:"industry" json:"industry,omitempty" yaml:"industry,omitempty"`
	Variant    string `db:"variant" json:"variant,omitempty" yaml:"variant,omitempty"`
	StartedAt  string `db:"started_at" json:"started_at" yaml:"started_at"`
	FinishedAt string `db:"finished_at" json:"finished_at" yaml:"finished_at"`
}

// CompetitorRow is one validated competitor of a discovery run.
type CompetitorRow struct {
	RunID          string `db:"run_id" json:"run_id" yaml:"run_id"`
	Rank           int    `db:"position" json:"rank" yaml:"rank"`
	Name           string `db:"name" json:"name" yaml:"name"`
	Frequency      int    `db:"frequency" json:"frequency" yaml:"frequency"`
	RelevanceScore int    `db:"relevance_score" json:"relevance_score" yaml:"relevance_score"`
	Scored         bool   `db:"scored" json:"scored" yaml:"scored"`
}

// CitationRow is one competitor's figures for one model, or for
// GlobalModel, in a citation run.
type CitationRow struct {
	RunID               string  `db:"run_id" json:"run_id" yaml:"run_id"`
	Competitor          string  `db:"competitor" json:"competitor" yaml:"competitor"`
	Model               string  `db:"model" json:"model" yaml:"model"`
	CitationCount       int     `db:"citation_count" json:"citation_count" yaml:"citation_count"`
	TotalQueries        int     `db:"total_queries" json:"total_queries" yaml:"total_queries"`
	CitationRate        float64 `db:"citation_rate" json:"citation_rate" yaml:"citation_rate"`
	RawCitationScore    float64 `db:"raw_citation_score" json:"raw_citation_score" yaml:"raw_citation_score"`
	CitationScore       float64 `db:"citation_score" json:"citation_score" yaml:"citation_score"`
	EqualWeightedGlobal float64 `db:"equal_weighted_global" json:"equal_weighted_global" yaml:"equal_weighted_global"`
}

// Open connects to the database selected by cfg and creates the schema if
// it does not exist. SQLite (the default) lives at <Dir>/index/visibility.db
// unless DSN is set; Postgres requires DSN.
func Open(ctx context.Context, cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	driver := cfg.Driver
	if driver == "" {
		driver = driverSQLite
	}

	dsn := cfg.DSN
	switch driver {
	case driverSQLite:
		if dsn == "" {
			dbDir := filepath.Join(dir, indexDir)
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating index directory: %w", err)
			}
			dsn = filepath.Join(dbDir, dbFile) + "?_journal_mode=WAL&_foreign_keys=on"
		}
	case driverPostgres:
		if dsn == "" {
			return nil, types.ConfigurationError("postgres report store requires a dsn")
		}
	default:
		return nil, types.ConfigurationError("unsupported store driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, driver: driver}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the base directory used for exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			variant TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind)`,
		`CREATE TABLE IF NOT EXISTS competitors (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			frequency INTEGER NOT NULL,
			relevance_score INTEGER NOT NULL,
			scored BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS citation_metrics (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			competitor TEXT NOT NULL,
			model TEXT NOT NULL,
			citation_count INTEGER NOT NULL,
			total_queries INTEGER NOT NULL,
			citation_rate DOUBLE PRECISION NOT NULL,
			raw_citation_score DOUBLE PRECISION NOT NULL,
			citation_score DOUBLE PRECISION NOT NULL,
			equal_weighted_global DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, competitor, model)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveDiscovery stores run, replacing any earlier copy with the same id.
func (s *Store) SaveDiscovery(ctx context.Context, run *types.DiscoveryRun) error {
	if run == nil || run.ID == "" {
		return eris.New("discovery run has no id")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling discovery run: %w", err)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		summary := RunSummary{
			ID:         run.ID,
			Kind:       KindDiscovery,
			Company:    run.Company,
			Industry:   run.Industry,
			Variant:    string(run.Variant),
			StartedAt:  formatTime(run.StartedAt),
			FinishedAt: formatTime(run.FinishedAt),
		}
		if err := replaceRun(ctx, tx, summary, payload); err != nil {
			return err
		}
		insert := tx.Rebind(`INSERT INTO competitors (run_id, position, name, frequency, relevance_score, scored) VALUES (?, ?, ?, ?, ?, ?)`)
		for i, c := range run.Competitors {
			if _, err := tx.ExecContext(ctx, insert, run.ID, i+1, c.Name, c.Frequency, c.RelevanceScore, c.Scored); err != nil {
				return fmt.Errorf("inserting competitor %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// SaveCitations stores run, replacing any earlier copy with the same id.
// Each competitor gets one row per model and one GlobalModel row.
func (s *Store) SaveCitations(ctx context.Context, run *types.CitationRun) error {
	if run == nil || run.ID == "" {
		return eris.New("citation run has no id")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling citation run: %w", err)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		summary := RunSummary{
			ID:         run.ID,
			Kind:       KindCitation,
			Industry:   run.Industry,
			StartedAt:  formatTime(run.StartedAt),
			FinishedAt: formatTime(run.FinishedAt),
		}
		if err := replaceRun(ctx, tx, summary, payload); err != nil {
			return err
		}
		insert := tx.Rebind(`INSERT INTO citation_metrics
			(run_id, competitor, model, citation_count, total_queries, citation_rate, raw_citation_score, citation_score, equal_weighted_global)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		for _, name := range run.Competitors {
			m, ok := run.Metrics[name]
			if !ok {
				continue
			}
			for model, mc := range m.PerModel {
				if _, err := tx.ExecContext(ctx, insert, run.ID, name, model,
					mc.CitationCount, mc.TotalQueries, mc.CitationRate, mc.RawCitationScore, mc.CitationScore, 0.0); err != nil {
					return fmt.Errorf("inserting %s/%s metrics: %w", name, model, err)
				}
			}
			g := m.Global
			if _, err := tx.ExecContext(ctx, insert, run.ID, name, GlobalModel,
				g.CitationCount, g.TotalQueries, g.CitationRate, g.RawCitationScore, g.CitationScore, g.EqualWeightedGlobal); err != nil {
				return fmt.Errorf("inserting %s global metrics: %w", name, err)
			}
		}
		return nil
	})
}

func replaceRun(ctx context.Context, tx *sqlx.Tx, r RunSummary, payload []byte) error {
	for _, stmt := range []string{
		`DELETE FROM competitors WHERE run_id = ?`,
		`DELETE FROM citation_metrics WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), r.ID); err != nil {
			return fmt.Errorf("clearing run %s: %w", r.ID, err)
		}
	}
	_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO runs (id, kind, company, industry, variant, started_at, finished_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Kind, r.Company, r.Industry, r.Variant, r.StartedAt, r.FinishedAt, string(payload))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListRuns returns stored runs, newest first. An empty kind lists all.
func (s *Store) ListRuns(ctx context.Context, kind string) ([]RunSummary, error) {
	q := `SELECT id, kind, company, industry, variant, started_at, finished_at FROM runs`
	var args []any
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY started_at DESC, id`

	runs := []RunSummary{}
	if err := s.db.SelectContext(ctx, &runs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Kind returns the kind of the stored run id.
func (s *Store) Kind(ctx context.Context, id string) (string, error) {
	var kind string
	err := s.db.GetContext(ctx, &kind, s.db.Rebind(`SELECT kind FROM runs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", eris.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return "", fmt.Errorf("looking up run %s: %w", id, err)
	}
	return kind, nil
}

// LoadDiscovery returns the stored discovery run id.
func (s *Store) LoadDiscovery(ctx context.Context, id string) (*types.DiscoveryRun, error) {
	var run types.DiscoveryRun
	if err := s.loadPayload(ctx, id, KindDiscovery, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// LoadCitations returns the stored citation run id.
func (s *Store) LoadCitations(ctx context.Context, id string) (*types.CitationRun, error) {
	var run types.CitationRun
	if err := s.loadPayload(ctx, id, KindCitation, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) loadPayload(ctx context.Context, id, kind string, v any) error {
	var payload string
	err := s.db.GetContext(ctx, &payload, s.db.Rebind(`SELECT payload FROM runs WHERE id = ? AND kind = ?`), id, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, "%s run %s", kind, id)
	}
	if err != nil {
		return fmt.Errorf("loading run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decoding run %s: %w", id, err)
	}
	return nil
}

// Competitors returns the ranked competitor rows of a discovery run.
func (s *Store) Competitors(ctx context.Context, runID string) ([]CompetitorRow, error) {
	rows := []CompetitorRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT run_id, position, name, frequency, relevance_score, scored FROM competitors WHERE run_id = ? ORDER BY position`), runID)
	if err != nil {
		return nil, fmt.Errorf("querying competitors: %w", err)
	}
	return rows, nil
}

// Citations returns the metric rows of a citation run. Global rows sort
// first within each competitor, and competitors by descending global score.
func (s *Store) Citations(ctx context.Context, runID string) ([]CitationRow, error) {
	rows := []CitationRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT m.run_id, m.competitor, m.model, m.citation_count, m.total_queries, m.citation_rate,
			m.raw_citation_score, m.citation_score, m.equal_weighted_global
		FROM citation_metrics m
		JOIN citation_metrics g ON g.run_id = m.run_id AND g.competitor = m.competitor AND g.model = ?
		WHERE m.run_id = ?
		ORDER BY g.citation_score DESC, m.competitor, CASE WHEN m.model = ? THEN 0 ELSE 1 END, m.model`),
		GlobalModel, runID, GlobalModel)
	if err != nil {
		return nil, fmt.Errorf("querying citation metrics: %w", err)
	}
	return rows, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
