package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		contact_name VARCHAR(255),
		email VARCHAR(255),
		phone VARCHAR(64),
		billing_address TEXT,
		site_address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		job_title VARCHAR(255) NOT NULL,
		description TEXT,
		site_location TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'draft',
		subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
		discount_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		total NUMERIC(15,2) NOT NULL DEFAULT 0,
		estimate_date DATE NOT NULL,
		expires_at DATE,
		notes TEXT,
		terms TEXT,
		sent_at TIMESTAMPTZ,
		viewed_at TIMESTAMPTZ,
		accepted_at TIMESTAMPTZ,
		rejected_at TIMESTAMPTZ,
		converted_at TIMESTAMPTZ,
		converted_to_ticket_id UUID,
		converted_to_project_id UUID,
		created_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_estimates_number ON estimates (number);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_customer_id ON estimates (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_estimates_status ON estimates (status);`,
	`CREATE TABLE IF NOT EXISTS estimate_line_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		estimate_id UUID NOT NULL REFERENCES estimates(id) ON DELETE CASCADE,
		line_order INTEGER NOT NULL,
		type VARCHAR(16) NOT NULL DEFAULT 'labor',
		description TEXT,
		quantity NUMERIC(10,2) NOT NULL DEFAULT 1,
		unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
		line_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		part_id UUID,
		equipment_id UUID,
		labor_hours NUMERIC(10,2),
		labor_rate NUMERIC(15,2)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_estimate_line_items_estimate_id ON estimate_line_items (estimate_id);`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		title VARCHAR(255) NOT NULL,
		description TEXT,
		site_location TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'open',
		priority VARCHAR(16) NOT NULL DEFAULT 'normal',
		assigned_to UUID,
		estimate_id UUID REFERENCES estimates(id),
		quoted_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		scheduled_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_number ON tickets (number);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_customer_id ON tickets (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_assigned_to ON tickets (assigned_to) WHERE assigned_to IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS ticket_photos (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		ticket_id UUID NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
		file_name VARCHAR(255) NOT NULL,
		content_type VARCHAR(128),
		size_bytes BIGINT NOT NULL DEFAULT 0,
		public_url VARCHAR(512) NOT NULL,
		uploaded_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_photos_ticket_id ON ticket_photos (ticket_id);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		number VARCHAR(32) NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'planned',
		budget NUMERIC(15,2) NOT NULL DEFAULT 0,
		estimate_id UUID REFERENCES estimates(id),
		start_date DATE,
		end_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_projects_number ON projects (number);`,
	`CREATE INDEX IF NOT EXISTS idx_projects_customer_id ON projects (customer_id);`,
	`CREATE TABLE IF NOT EXISTS parts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		sku VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		unit_cost NUMERIC(15,2) NOT NULL DEFAULT 0,
		unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
		quantity_on_hand INTEGER NOT NULL DEFAULT 0,
		reorder_level INTEGER NOT NULL DEFAULT 0,
		vendor_name VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_parts_sku ON parts (sku);`,
	`CREATE TABLE IF NOT EXISTS equipment (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		customer_id UUID NOT NULL REFERENCES customers(id),
		name VARCHAR(255) NOT NULL,
		model_number VARCHAR(128),
		serial_number VARCHAR(128),
		install_date DATE,
		warranty_expires_at DATE,
		location VARCHAR(255),
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_equipment_customer_id ON equipment (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_equipment_warranty ON equipment (warranty_expires_at) WHERE warranty_expires_at IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS labor_rate_profiles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		standard_rate NUMERIC(15,2) NOT NULL,
		after_hours_rate NUMERIC(15,2) NOT NULL,
		emergency_rate NUMERIC(15,2) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_labor_rate_profiles_active ON labor_rate_profiles (active);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'estimates' AND column_name = 'converted_at') THEN
			ALTER TABLE estimates ADD COLUMN converted_at TIMESTAMPTZ;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'tickets' AND column_name = 'quoted_total') THEN
			ALTER TABLE tickets ADD COLUMN quoted_total NUMERIC(15,2) NOT NULL DEFAULT 0;
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
