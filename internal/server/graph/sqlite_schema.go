package graph

// SQLite schema DDL constants

const schemaNodes = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    labels TEXT NOT NULL DEFAULT '[]',
    difficulty TEXT,
    properties TEXT NOT NULL DEFAULT '{}'
)`

const schemaRelationships = `
CREATE TABLE IF NOT EXISTS relationships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    target_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    weight REAL,
    properties TEXT NOT NULL DEFAULT '{}',
    UNIQUE(source_id, target_id, type)
)`

// Index definitions
const indexNodesName = `CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name)`
const indexNodesDifficulty = `CREATE INDEX IF NOT EXISTS idx_nodes_difficulty ON nodes(difficulty)`
const indexRelSource = `CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id)`
const indexRelTarget = `CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id)`
const indexRelType = `CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type)`

// SQLite pragmas for optimal performance
const pragmaWAL = `PRAGMA journal_mode=WAL`
const pragmaFK = `PRAGMA foreign_keys=ON`
const pragmaBusyTimeout = `PRAGMA busy_timeout=5000`
const pragmaSynchronous = `PRAGMA synchronous=NORMAL`

// allSchemaStatements returns all schema DDL in order
func allSchemaStatements() []string {
	return []string{
		schemaNodes,
		schemaRelationships,
		indexNodesName,
		indexNodesDifficulty,
		indexRelSource,
		indexRelTarget,
		indexRelType,
	}
}

// allPragmas returns all pragma statements
func allPragmas() []string {
	return []string{
		pragmaWAL,
		pragmaFK,
		pragmaBusyTimeout,
		pragmaSynchronous,
	}
}
