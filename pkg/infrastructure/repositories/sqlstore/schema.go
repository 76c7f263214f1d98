package sqlstore

// schema is applied in order on every Open. {{id}} expands to the driver's
// auto-increment primary key. Quantities are stored as decimal text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id {{id}},
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		uom TEXT NOT NULL DEFAULT 'ea',
		lead_time INTEGER NOT NULL DEFAULT 0,
		batch_size TEXT NOT NULL DEFAULT '25'
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id {{id}},
		item_id BIGINT NOT NULL REFERENCES items(id),
		location TEXT NOT NULL DEFAULT 'Main',
		qty TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS boms (
		id {{id}},
		parent_item_id BIGINT NOT NULL REFERENCES items(id),
		child_item_id BIGINT NOT NULL REFERENCES items(id),
		qty TEXT NOT NULL,
		is_dilution BOOLEAN NOT NULL DEFAULT FALSE,
		per_main_qty TEXT,
		dilution_main_item_id BIGINT REFERENCES items(id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_orders (
		id {{id}},
		item_id BIGINT NOT NULL REFERENCES items(id),
		qty TEXT NOT NULL,
		eta TEXT,
		status TEXT NOT NULL DEFAULT 'OPEN'
	)`,
	`CREATE TABLE IF NOT EXISTS production_orders (
		id {{id}},
		item_id BIGINT NOT NULL REFERENCES items(id),
		qty TEXT NOT NULL,
		due_date TEXT,
		status TEXT NOT NULL DEFAULT 'OPEN'
	)`,
	`CREATE TABLE IF NOT EXISTS replace_history (
		id {{id}},
		ts TEXT NOT NULL,
		old_code TEXT NOT NULL,
		new_code TEXT NOT NULL,
		snapshot TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_item ON inventory(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_boms_parent ON boms(parent_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_boms_child ON boms(child_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_orders_item ON purchase_orders(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_production_orders_item ON production_orders(item_id)`,
}
