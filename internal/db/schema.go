package db

// SchemaSQL is the complete schema for fresh flowboard installs.
//
// This is the single source of truth for the database schema. All
// repository tests load it via GetSchemaSQL() so that test schemas
// cannot drift from production: a repository referencing a column that
// does not exist here fails immediately with "no such column".
//
// When adding columns or tables, add a migration in migrations.go and
// update SchemaSQL to match.
const SchemaSQL = `
-- Work items (internal mirror of board state)
CREATE TABLE IF NOT EXISTS workflow_items (
	id TEXT PRIMARY KEY,
	board_item_id TEXT,
	issue_number INTEGER,
	issue_url TEXT,
	issue_title TEXT,
	type TEXT NOT NULL CHECK(type IN ('feature', 'bug', 'task')),
	status TEXT NOT NULL,
	review_status TEXT,
	implementation_phase TEXT,
	source_type TEXT NOT NULL,
	source_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(source_type, source_id)
);

CREATE INDEX IF NOT EXISTS idx_workflow_items_status ON workflow_items(status);
CREATE INDEX IF NOT EXISTS idx_workflow_items_issue ON workflow_items(issue_number);

-- Intake records (feature requests and bug reports)
CREATE TABLE IF NOT EXISTS intake_records (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('feature-request', 'bug-report')),
	title TEXT NOT NULL,
	description TEXT,
	submitter TEXT,
	approval_token TEXT,
	issue_number INTEGER,
	issue_url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Action log (best-effort text log of orchestration actions)
CREATE TABLE IF NOT EXISTS action_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	detail TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema for tests and fresh
// installs.
func GetSchemaSQL() string {
	return SchemaSQL
}
