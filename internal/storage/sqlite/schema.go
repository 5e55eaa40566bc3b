package sqlite

const schema = `
-- Lists table
CREATE TABLE IF NOT EXISTS todo_lists (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_key TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL CHECK(length(title) <= 500),
    description TEXT NOT NULL DEFAULT '',
    list_type TEXT NOT NULL DEFAULT 'sequential',
    status TEXT NOT NULL DEFAULT 'active',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_todo_lists_status ON todo_lists(status);

-- Items table
-- parent_item_id is a self reference; subitem keys are unique only within
-- their parent's scope, so the unique index spans (list_id, parent_item_id, item_key).
CREATE TABLE IF NOT EXISTS todo_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_id INTEGER NOT NULL,
    item_key TEXT NOT NULL,
    content TEXT NOT NULL CHECK(length(content) <= 1000),
    position INTEGER NOT NULL DEFAULT 1,
    status TEXT NOT NULL DEFAULT 'pending',
    completion_states TEXT NOT NULL DEFAULT '{}',
    parent_item_id INTEGER,
    metadata TEXT NOT NULL DEFAULT '{}',
    started_at DATETIME,
    completed_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (list_id) REFERENCES todo_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (parent_item_id) REFERENCES todo_items(id) ON DELETE RESTRICT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_todo_items_key_scope ON todo_items(list_id, IFNULL(parent_item_id, 0), item_key);
CREATE INDEX IF NOT EXISTS idx_todo_items_list_status ON todo_items(list_id, status);
CREATE INDEX IF NOT EXISTS idx_todo_items_list_position ON todo_items(list_id, position);
CREATE INDEX IF NOT EXISTS idx_todo_items_parent_status ON todo_items(parent_item_id, status);

-- List properties table
CREATE TABLE IF NOT EXISTS list_properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_id INTEGER NOT NULL,
    property_key TEXT NOT NULL,
    property_value TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (list_id, property_key),
    FOREIGN KEY (list_id) REFERENCES todo_lists(id) ON DELETE CASCADE
);

-- Item properties table
CREATE TABLE IF NOT EXISTS item_properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id INTEGER NOT NULL,
    property_key TEXT NOT NULL,
    property_value TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (item_id, property_key),
    FOREIGN KEY (item_id) REFERENCES todo_items(id) ON DELETE CASCADE
);
-- Note: idx_item_properties_kv is created in migrations/001_property_search_index.go

-- Tags table
CREATE TABLE IF NOT EXISTS list_tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT 'gray',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Tag assignments table
CREATE TABLE IF NOT EXISTS list_tag_assignments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    list_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    assigned_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (list_id, tag_id),
    FOREIGN KEY (list_id) REFERENCES todo_lists(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES list_tags(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tag_assignments_tag ON list_tag_assignments(tag_id);

-- Dependencies table
CREATE TABLE IF NOT EXISTS item_dependencies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dependent_item_id INTEGER NOT NULL,
    required_item_id INTEGER NOT NULL,
    dependency_type TEXT NOT NULL DEFAULT 'requires',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (dependent_item_id, required_item_id),
    FOREIGN KEY (dependent_item_id) REFERENCES todo_items(id) ON DELETE CASCADE,
    FOREIGN KEY (required_item_id) REFERENCES todo_items(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_item_dependencies_required ON item_dependencies(required_item_id);

-- History table (append-only)
CREATE TABLE IF NOT EXISTS todo_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id INTEGER,
    list_id INTEGER,
    action TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    user_context TEXT NOT NULL DEFAULT '',
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_todo_history_item ON todo_history(item_id);
CREATE INDEX IF NOT EXISTS idx_todo_history_timestamp ON todo_history(timestamp);
-- Note: idx_todo_history_list is created in migrations/003_history_list_index.go

-- Metadata table for engine bookkeeping
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
