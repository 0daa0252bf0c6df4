package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrInvalidTransition  = errors.New("invalid contract status transition")
	ErrUsageLimitReached  = errors.New("monthly analysis limit reached")
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateContract(ctx context.Context, c *models.Contract) error
	GetContract(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]*models.Contract, int, error)
	DeleteContract(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	// BeginAnalysis consumes one unit of the tenant's monthly quota and moves
	// the contract to processing, atomically. Fails with ErrUsageLimitReached,
	// ErrAnalysisInProgress or ErrNotFound without changing anything.
	BeginAnalysis(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Contract, error)
	UpdateContractStatus(ctx context.Context, id uuid.UUID, status string, opts ...ContractUpdateOption) error
	SetExtraction(ctx context.Context, id uuid.UUID, text string, pageCount int, warning *string) error

	// SaveAnalysis replaces any previous analysis of the contract in one transaction.
	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	GetAnalysisByContractID(ctx context.Context, contractID uuid.UUID) (*models.Analysis, error)
}

type ContractFilter struct {
	TenantID uuid.UUID
	Status   string
	Page     int
	Limit    int
}

// ContractUpdate carries the optional fields set alongside a status change.
type ContractUpdate struct {
	ErrorMessage *string
	RiskScore    *float64
}

type ContractUpdateOption func(*ContractUpdate)

func WithErrorMessage(msg string) ContractUpdateOption {
	return func(p *ContractUpdate) {
		p.ErrorMessage = &msg
	}
}

func WithRiskScore(score float64) ContractUpdateOption {
	return func(p *ContractUpdate) {
		p.RiskScore = &score
	}
}

// validTransitions lists, per target status, the statuses a contract may move from.
var validTransitions = map[string][]string{
	models.ContractStatusProcessing: {models.ContractStatusPending, models.ContractStatusCompleted, models.ContractStatusFailed},
	models.ContractStatusCompleted:  {models.ContractStatusProcessing},
	models.ContractStatusFailed:     {models.ContractStatusProcessing},
}

// CanTransition reports whether a contract may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range validTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}
