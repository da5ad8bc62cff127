package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the tables of a graph store.
const Schema = `
-- One row per stored build
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    built_at INTEGER NOT NULL,
    stored_at INTEGER NOT NULL,
    source TEXT,

    -- Build statistics
    files INTEGER NOT NULL,
    tokens INTEGER NOT NULL,
    diagnostics INTEGER NOT NULL,
    entities INTEGER NOT NULL,
    pruned INTEGER NOT NULL,
    closure_pairs INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL
);

-- Collections of a run, in build order
CREATE TABLE IF NOT EXISTS collections (
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    pruned TEXT,
    PRIMARY KEY (run_id, name)
);

-- Entities of a collection, in definition order
CREATE TABLE IF NOT EXISTS entities (
    run_id TEXT NOT NULL,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (run_id, collection, id)
);

-- One row per required atom or forbidden id
CREATE TABLE IF NOT EXISTS requirements (
    run_id TEXT NOT NULL,
    collection TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    facet TEXT NOT NULL,
    position INTEGER NOT NULL,
    value TEXT NOT NULL,
    is_group INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_built_at ON runs(built_at);
CREATE INDEX IF NOT EXISTS idx_entities_run ON entities(run_id, collection);
CREATE INDEX IF NOT EXISTS idx_requirements_entity ON requirements(run_id, collection, entity_id);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// Requirement row kinds.
const (
	kindRequired  = "required"
	kindForbidden = "forbidden"
)
