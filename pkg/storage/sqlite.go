package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite" // registers "sqlite"

	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pipeline"
	"pdx-hq/reqgraph/pkg/requirements"
	"pdx-hq/reqgraph/pkg/telemetry/logging"
	"pdx-hq/reqgraph/pkg/telemetry/metrics"
	"pdx-hq/reqgraph/pkg/telemetry/tracing"
)

// Supported driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// Store persists graphs in a SQLite database.
type Store struct {
	db        *sql.DB
	driver    string
	path      string
	logger    *logging.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	mu        sync.Mutex
	closeOnce sync.Once
}

// RunSummary describes one stored run without its collections.
type RunSummary struct {
	ID          string         `json:"id" yaml:"id"`
	BuiltAt     time.Time      `json:"built_at" yaml:"built_at"`
	StoredAt    time.Time      `json:"stored_at" yaml:"stored_at"`
	Collections int            `json:"collections" yaml:"collections"`
	Revision    string         `json:"revision,omitempty" yaml:"revision,omitempty"`
	Stats       pipeline.Stats `json:"stats" yaml:"stats"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collector. The default records nothing.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithTracer sets the tracer. The default records no spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Store) {
		s.tracer = t
	}
}

// Open opens (creating if needed) the database described by cfg and
// prepares its schema.
func Open(cfg config.StorageConfig, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, newError("open", errors.New("database path cannot be empty"))
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DefaultStorageDriver
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, newError("open", fmt.Errorf("unsupported driver %q", driver))
	}

	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = config.DefaultStorageBusyTimeout
	}

	if cfg.Path != memoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, newError("open", err)
			}
		}
	}

	db, err := sql.Open(driver, cfg.Path)
	if err != nil {
		return nil, newError("open", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		driver: driver,
		path:   cfg.Path,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("storage")

	wal := cfg.WALMode == nil || *cfg.WALMode
	if err := s.initialize(wal, busyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("Graph store opened",
		"driver", driver,
		"path", cfg.Path,
		"wal_mode", wal,
	)
	return s, nil
}

// initialize applies pragmas and creates the schema.
func (s *Store) initialize(wal bool, busyTimeout time.Duration) error {
	if wal && s.path != memoryPath {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newError("enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return newError("set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newError("create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newError("insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newError("get_schema_version", err)
	}
	if version != SchemaVersion {
		return newError("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Driver returns the name of the SQL driver in use.
func (s *Store) Driver() string {
	return s.driver
}

// Save stores a graph as a new run. Saving a run ID twice fails.
func (s *Store) Save(ctx context.Context, g *pipeline.Graph) error {
	if g == nil {
		return newError("save", errors.New("graph cannot be nil"))
	}
	if g.RunID == "" {
		return newError("save", errors.New("run id cannot be empty"))
	}

	ctx, span := s.tracer.Start(ctx, "storage.save", trace.WithAttributes(tracing.RunID(g.RunID)))
	span.SetAttributes(tracing.StorageAttributes("save", s.driver)...)

	start := time.Now()
	err := s.save(ctx, g)
	s.record("save", start, err)
	tracing.End(span, err)
	if err != nil {
		return err
	}

	s.logger.DebugContext(logging.WithRunID(ctx, g.RunID), "Graph stored",
		"collections", len(g.Collections),
		"entities", g.Stats.Entities,
	)
	return nil
}

func (s *Store) save(ctx context.Context, g *pipeline.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError("save", err)
	}
	defer tx.Rollback()

	source, err := encodeSource(g.Source)
	if err != nil {
		return newError("save", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, built_at, stored_at, source, files, tokens, diagnostics, entities, pruned, closure_pairs, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.BuiltAt.UnixNano(), time.Now().UnixNano(), source,
		g.Stats.Files, g.Stats.Tokens, g.Stats.Diagnostics, g.Stats.Entities,
		g.Stats.Pruned, g.Stats.ClosurePairs, g.Stats.DurationMS,
	)
	if err != nil {
		return newError("save", fmt.Errorf("insert run: %w", err))
	}

	collectionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO collections (run_id, name, position, pruned) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return newError("save", err)
	}
	defer collectionStmt.Close()

	entityStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entities (run_id, collection, id, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return newError("save", err)
	}
	defer entityStmt.Close()

	reqStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO requirements (run_id, collection, entity_id, kind, facet, position, value, is_group)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return newError("save", err)
	}
	defer reqStmt.Close()

	for i, c := range g.Collections {
		var pruned any
		if len(c.Pruned) > 0 {
			data, err := json.Marshal(c.Pruned)
			if err != nil {
				return newError("save", err)
			}
			pruned = string(data)
		}
		if _, err := collectionStmt.ExecContext(ctx, g.RunID, c.Name, i, pruned); err != nil {
			return newError("save", fmt.Errorf("insert collection %q: %w", c.Name, err))
		}

		for j, e := range c.Entities {
			if _, err := entityStmt.ExecContext(ctx, g.RunID, c.Name, e.ID, j); err != nil {
				return newError("save", fmt.Errorf("insert entity %q: %w", e.ID, err))
			}
			if e.Requirements == nil {
				continue
			}
			if err := saveRequirements(ctx, reqStmt, g.RunID, c.Name, e); err != nil {
				return newError("save", fmt.Errorf("insert requirements of %q: %w", e.ID, err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return newError("save", err)
	}
	return nil
}

func saveRequirements(ctx context.Context, stmt *sql.Stmt, runID, collection string, e *requirements.Entity) error {
	rs := e.Requirements

	for _, facet := range sortedKeys(rs.Required) {
		for pos, atom := range rs.Required[facet] {
			value, group := atom.ID, 0
			if atom.IsGroup() {
				data, err := json.Marshal(atom.Alternatives)
				if err != nil {
					return err
				}
				value, group = string(data), 1
			}
			if _, err := stmt.ExecContext(ctx, runID, collection, e.ID, kindRequired, facet, pos, value, group); err != nil {
				return err
			}
		}
	}

	for _, facet := range sortedKeys(rs.Forbidden) {
		for pos, id := range rs.Forbidden[facet] {
			if _, err := stmt.ExecContext(ctx, runID, collection, e.ID, kindForbidden, facet, pos, id, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads a stored run. id may be a full run ID or an unambiguous prefix.
func (s *Store) Load(ctx context.Context, id string) (*pipeline.Graph, error) {
	start := time.Now()
	g, err := s.load(ctx, id)
	s.record("load", start, err)
	return g, err
}

// Latest loads the most recently built run.
func (s *Store) Latest(ctx context.Context) (*pipeline.Graph, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY built_at DESC, stored_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError("load", ErrNotFound)
	}
	if err != nil {
		return nil, newError("load", err)
	}
	return s.Load(ctx, id)
}

func (s *Store) load(ctx context.Context, id string) (*pipeline.Graph, error) {
	runID, err := s.resolveRunID(ctx, id)
	if err != nil {
		return nil, err
	}

	g := &pipeline.Graph{RunID: runID}
	var builtAt int64
	var source sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT built_at, source, files, tokens, diagnostics, entities, pruned, closure_pairs, duration_ms
		FROM runs WHERE id = ?`, runID).Scan(
		&builtAt, &source, &g.Stats.Files, &g.Stats.Tokens, &g.Stats.Diagnostics, &g.Stats.Entities,
		&g.Stats.Pruned, &g.Stats.ClosurePairs, &g.Stats.DurationMS,
	)
	if err != nil {
		return nil, newError("load", err)
	}
	g.BuiltAt = time.Unix(0, builtAt).UTC()
	if g.Source, err = decodeSource(source); err != nil {
		return nil, newError("load", err)
	}

	byName, err := s.loadCollections(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := s.loadEntities(ctx, runID, byName); err != nil {
		return nil, err
	}
	if err := s.loadRequirements(ctx, runID, byName); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Store) resolveRunID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", newError("load", errors.New("run id cannot be empty"))
	}

	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, id).Scan(&runID)
	if err == nil {
		return runID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", newError("load", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`, len(id), id)
	if err != nil {
		return "", newError("load", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", newError("load", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", newError("load", err)
	}

	switch len(matches) {
	case 0:
		return "", newError("load", fmt.Errorf("%w: %s", ErrNotFound, id))
	case 1:
		return matches[0], nil
	default:
		return "", newError("load", fmt.Errorf("run id prefix %q is ambiguous", id))
	}
}

func (s *Store) loadCollections(ctx context.Context, g *pipeline.Graph) (map[string]*requirements.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, pruned FROM collections WHERE run_id = ? ORDER BY position`, g.RunID)
	if err != nil {
		return nil, newError("load", err)
	}
	defer rows.Close()

	byName := make(map[string]*requirements.Collection)
	for rows.Next() {
		var name string
		var pruned sql.NullString
		if err := rows.Scan(&name, &pruned); err != nil {
			return nil, newError("load", err)
		}

		c := requirements.NewCollection(name, "")
		if pruned.Valid && pruned.String != "" {
			if err := json.Unmarshal([]byte(pruned.String), &c.Pruned); err != nil {
				return nil, newError("load", fmt.Errorf("collection %q: %w", name, err))
			}
		}
		g.Collections = append(g.Collections, c)
		byName[name] = c
	}
	if err := rows.Err(); err != nil {
		return nil, newError("load", err)
	}
	return byName, nil
}

func (s *Store) loadEntities(ctx context.Context, runID string, byName map[string]*requirements.Collection) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, id FROM entities WHERE run_id = ? ORDER BY collection, position`, runID)
	if err != nil {
		return newError("load", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection, id string
		if err := rows.Scan(&collection, &id); err != nil {
			return newError("load", err)
		}
		c, ok := byName[collection]
		if !ok {
			return newError("load", fmt.Errorf("entity %q references unknown collection %q", id, collection))
		}
		c.Put(&requirements.Entity{ID: id, Requirements: requirements.NewRequirementSet()})
	}
	if err := rows.Err(); err != nil {
		return newError("load", err)
	}
	return nil
}

func (s *Store) loadRequirements(ctx context.Context, runID string, byName map[string]*requirements.Collection) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, entity_id, kind, facet, value, is_group
		FROM requirements WHERE run_id = ?
		ORDER BY collection, entity_id, kind, facet, position`, runID)
	if err != nil {
		return newError("load", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection, entityID, kind, facet, value string
		var group int
		if err := rows.Scan(&collection, &entityID, &kind, &facet, &value, &group); err != nil {
			return newError("load", err)
		}

		c := byName[collection]
		var e *requirements.Entity
		if c != nil {
			e = c.Get(entityID)
		}
		if e == nil {
			return newError("load", fmt.Errorf("requirement references unknown entity %s/%s", collection, entityID))
		}

		switch kind {
		case kindRequired:
			atom := requirements.Single(value)
			if group != 0 {
				var ids []string
				if err := json.Unmarshal([]byte(value), &ids); err != nil {
					return newError("load", fmt.Errorf("entity %q: %w", entityID, err))
				}
				atom = requirements.Atom{Alternatives: ids}
			}
			e.Requirements.AddRequired(facet, atom)
		case kindForbidden:
			e.Requirements.AddForbidden(facet, value)
		default:
			return newError("load", fmt.Errorf("unknown requirement kind %q", kind))
		}
	}
	if err := rows.Err(); err != nil {
		return newError("load", err)
	}
	return nil
}

// ListRuns returns stored runs, most recent first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	start := time.Now()
	runs, err := s.listRuns(ctx, limit)
	s.record("list", start, err)
	return runs, err
}

func (s *Store) listRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.built_at, r.stored_at, r.source, r.files, r.tokens, r.diagnostics, r.entities,
			r.pruned, r.closure_pairs, r.duration_ms,
			(SELECT COUNT(*) FROM collections c WHERE c.run_id = r.id)
		FROM runs r
		ORDER BY r.built_at DESC, r.stored_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, newError("list", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var run RunSummary
		var builtAt, storedAt int64
		var source sql.NullString
		err := rows.Scan(&run.ID, &builtAt, &storedAt, &source,
			&run.Stats.Files, &run.Stats.Tokens, &run.Stats.Diagnostics, &run.Stats.Entities,
			&run.Stats.Pruned, &run.Stats.ClosurePairs, &run.Stats.DurationMS,
			&run.Collections,
		)
		if err != nil {
			return nil, newError("list", err)
		}
		run.BuiltAt = time.Unix(0, builtAt).UTC()
		run.StoredAt = time.Unix(0, storedAt).UTC()
		if rev, err := decodeSource(source); err == nil {
			run.Revision = rev.Short()
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("list", err)
	}
	return runs, nil
}

// Prune deletes all but the keep most recently built runs and returns how
// many runs were deleted. A keep of zero or less deletes nothing.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	ctx, span := s.tracer.Start(ctx, "storage.prune", trace.WithAttributes(tracing.StorageAttributes("prune", s.driver)...))

	start := time.Now()
	deleted, err := s.prune(ctx, keep)
	s.record("prune", start, err)
	tracing.End(span, err)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "Pruned stored runs", "deleted", deleted, "kept", keep)
	}
	return deleted, nil
}

func (s *Store) prune(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newError("prune", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY built_at DESC, stored_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, newError("prune", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, newError("prune", err)
	}

	for _, table := range []string{"collections", "entities", "requirements"} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE run_id NOT IN (SELECT id FROM runs)`, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return 0, newError("prune", fmt.Errorf("%s: %w", table, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, newError("prune", err)
	}
	return int(deleted), nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newError("ping", err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if cerr := s.db.Close(); cerr != nil {
			err = newError("close", cerr)
		}
	})
	return err
}

func (s *Store) record(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordStorageOperation(op, status, time.Since(start))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeSource stores a revision as JSON; graphs built outside git store NULL.
func encodeSource(rev *pipeline.Revision) (sql.NullString, error) {
	if rev == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(rev)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode source revision: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeSource(v sql.NullString) (*pipeline.Revision, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var rev pipeline.Revision
	if err := json.Unmarshal([]byte(v.String), &rev); err != nil {
		return nil, fmt.Errorf("decode source revision: %w", err)
	}
	return &rev, nil
}
