package postgres

import (
	"context"

	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal/errors"
	"funnelboard/ports"

	"github.com/jmoiron/sqlx"
)

// AccountCreationQuery counts profiles created this year that reached each
// onboarding step
const AccountCreationQuery = `
	SELECT
		COUNT(*) AS total_accounts,
		COUNT(*) FILTER (WHERE first_name IS NOT NULL AND last_name IS NOT NULL) AS step_basic_info,
		COUNT(*) FILTER (WHERE headline_description IS NOT NULL) AS step_headline,
		COUNT(*) FILTER (WHERE location_id IS NOT NULL) AS step_location,
		COUNT(*) FILTER (WHERE company_id IS NOT NULL) AS step_company,
		COUNT(*) FILTER (WHERE linked_in_url IS NOT NULL) AS step_linkedin,
		COUNT(*) FILTER (WHERE has_finder = true) AS step_finder_enabled
	FROM persons
	WHERE deleted_at IS NULL
	  AND created_at >= DATE_TRUNC('year', CURRENT_DATE)
`

// FunnelRepository reads the account-creation funnel from PostgreSQL
type FunnelRepository struct {
	db *sqlx.DB
}

var _ ports.FunnelSource = (*FunnelRepository)(nil)

// NewFunnelRepository creates a new PostgreSQL funnel source
func NewFunnelRepository(db *sqlx.DB) *FunnelRepository {
	return &FunnelRepository{db: db}
}

func (r *FunnelRepository) Name() core.FunnelName {
	return funnel.AccountCreationFunnel
}

// Funnel runs the aggregate query and maps its single row to a spec
func (r *FunnelRepository) Funnel(ctx context.Context) (funnel.Spec, error) {
	var rows []funnel.AccountCreationCounts
	if err := r.db.SelectContext(ctx, &rows, AccountCreationQuery); err != nil {
		return funnel.Spec{}, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to query account creation funnel"))
	}
	return specFromRows(rows)
}

func specFromRows(rows []funnel.AccountCreationCounts) (funnel.Spec, error) {
	if len(rows) == 0 {
		return funnel.Spec{}, core.ErrEmptyFunnel
	}
	spec := rows[0].Spec()
	if err := spec.Validate(); err != nil {
		return funnel.Spec{}, err
	}
	return spec, nil
}
