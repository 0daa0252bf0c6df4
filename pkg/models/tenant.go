package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an account. Every contract and API key belongs to a tenant.
// ContractsAnalyzed counts analysis runs in the current billing month.
type Tenant struct {
	ID                uuid.UUID `db:"id"                 json:"id"`
	Name              string    `db:"name"               json:"name"`
	ContractsAnalyzed int       `db:"contracts_analyzed" json:"contracts_analyzed"`
	MonthlyLimit      int       `db:"monthly_limit"      json:"monthly_limit"`
	CreatedAt         time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"         json:"updated_at"`
}

// HasQuota reports whether the tenant may start another analysis run.
func (t *Tenant) HasQuota() bool {
	return t.ContractsAnalyzed < t.MonthlyLimit
}
