package migration

import (
	"context"

	"funnelboard/domain/funnel"
	"funnelboard/internal/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner bootstraps the persons schema the account-creation funnel
// reads from. Statements are idempotent and never drop anything.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Statements lists the DDL in execution order
func (r *MigrationRunner) Statements() []string {
	return []string{createLocationsTable, createCompaniesTable, createPersonsTable, createPersonsIndexes}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to begin migration"))
	}
	defer tx.Rollback()

	for i, stmt := range r.Statements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "migration step %d failed", i+1))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to commit migration"))
	}
	return nil
}

const createLocationsTable = `
	CREATE TABLE IF NOT EXISTS locations (
		id UUID PRIMARY KEY,
		city VARCHAR(255),
		country VARCHAR(255)
	)`

const createCompaniesTable = `
	CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	)`

const createPersonsTable = `
	CREATE TABLE IF NOT EXISTS persons (
		id UUID PRIMARY KEY,
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		headline_description TEXT,
		location_id UUID REFERENCES locations(id),
		company_id UUID REFERENCES companies(id),
		linked_in_url VARCHAR(512),
		has_finder BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMP WITH TIME ZONE
	)`

const createPersonsIndexes = `
	CREATE INDEX IF NOT EXISTS idx_persons_created_at ON persons(created_at) WHERE deleted_at IS NULL`

// SeedPerson is one demo row. Nil fields model an unfinished onboarding step.
type SeedPerson struct {
	ID                  uuid.UUID  `db:"id"`
	FirstName           *string    `db:"first_name"`
	LastName            *string    `db:"last_name"`
	HeadlineDescription *string    `db:"headline_description"`
	LocationID          *uuid.UUID `db:"location_id"`
	CompanyID           *uuid.UUID `db:"company_id"`
	LinkedInURL         *string    `db:"linked_in_url"`
	HasFinder           bool       `db:"has_finder"`
}

// SeedPeople builds demo persons whose onboarding progress reproduces counts.
// Person i reaches step k when i is below that step's count, so counts must be
// non-increasing for the rows to match exactly.
func SeedPeople(counts funnel.AccountCreationCounts, locationID, companyID uuid.UUID) []SeedPerson {
	str := func(s string) *string { return &s }
	people := make([]SeedPerson, counts.TotalAccounts)
	for i := range people {
		n := int64(i)
		p := SeedPerson{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})}
		if n < counts.StepBasicInfo {
			p.FirstName, p.LastName = str("Demo"), str("Person")
		}
		if n < counts.StepHeadline {
			p.HeadlineDescription = str("Process chemist")
		}
		if n < counts.StepLocation {
			loc := locationID
			p.LocationID = &loc
		}
		if n < counts.StepCompany {
			co := companyID
			p.CompanyID = &co
		}
		if n < counts.StepLinkedIn {
			p.LinkedInURL = str("https://www.linkedin.com/in/demo")
		}
		p.HasFinder = n < counts.StepFinderEnabled
		people[i] = p
	}
	return people
}

// Seed inserts demo persons for local development. Existing rows are kept.
func (r *MigrationRunner) Seed(ctx context.Context, db *sqlx.DB, counts funnel.AccountCreationCounts) error {
	locationID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("demo-location"))
	companyID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("demo-company"))

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to begin seed"))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO locations (id, city, country) VALUES ($1, 'Basel', 'Switzerland') ON CONFLICT (id) DO NOTHING`, locationID); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to seed location"))
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO companies (id, name) VALUES ($1, 'Demo Labs') ON CONFLICT (id) DO NOTHING`, companyID); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to seed company"))
	}

	for _, p := range SeedPeople(counts, locationID, companyID) {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO persons (id, first_name, last_name, headline_description, location_id, company_id, linked_in_url, has_finder)
			VALUES (:id, :first_name, :last_name, :headline_description, :location_id, :company_id, :linked_in_url, :has_finder)
			ON CONFLICT (id) DO NOTHING`, p); err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to seed person"))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to commit seed"))
	}
	return nil
}
