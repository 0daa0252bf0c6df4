package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Tenants ---

const tenantColumns = `id, name, contracts_analyzed, monthly_limit, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.ContractsAnalyzed, &t.MonthlyLimit, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) GetDefaultTenant(ctx context.Context) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE name = 'default' LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := scanTenant(s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	return collectAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.TenantID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return collectAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// --- Contracts ---

const contractColumns = `id, tenant_id, file_name, file_key, file_size, content_type, page_count,
	extracted_text, status, risk_score, warning, error_message, created_at, updated_at`

func scanContract(row pgx.Row) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(&c.ID, &c.TenantID, &c.FileName, &c.FileKey, &c.FileSize, &c.ContentType,
		&c.PageCount, &c.ExtractedText, &c.Status, &c.RiskScore, &c.Warning, &c.ErrorMessage,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateContract(ctx context.Context, c *models.Contract) error {
	if c.Status == "" {
		c.Status = models.ContractStatusPending
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contracts (id, tenant_id, file_name, file_key, file_size, content_type, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TenantID, c.FileName, c.FileKey, c.FileSize, c.ContentType, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create contract: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContract(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Contract, error) {
	c, err := scanContract(s.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListContracts(ctx context.Context, filter ContractFilter) ([]*models.Contract, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contracts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	limit, offset := normalizePage(filter.Page, filter.Limit)

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM contracts WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		contractColumns, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := []*models.Contract{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, total, rows.Err()
}

func (s *PostgresStore) DeleteContract(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) BeginAnalysis(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Contract, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin analysis tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	c, err := scanContract(tx.QueryRow(ctx,
		`UPDATE contracts SET status = $3, error_message = NULL, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND status <> $3
		 RETURNING `+contractColumns,
		id, tenantID, models.ContractStatusProcessing))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM contracts WHERE id = $1 AND tenant_id = $2)`, id, tenantID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check contract: %w", err)
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrAnalysisInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("mark contract processing: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE tenants SET contracts_analyzed = contracts_analyzed + 1, updated_at = NOW()
		 WHERE id = $1 AND contracts_analyzed < monthly_limit`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("increment usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUsageLimitReached
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit begin analysis: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) UpdateContractStatus(ctx context.Context, id uuid.UUID, status string, opts ...ContractUpdateOption) error {
	params := &ContractUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	from := validTransitions[status]
	if len(from) == 0 {
		return fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, status)
	}

	query := `UPDATE contracts SET status = $2, updated_at = $3`
	args := []any{id, status, time.Now().UTC()}
	argIdx := 4

	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.RiskScore != nil {
		query += fmt.Sprintf(", risk_score = $%d", argIdx)
		args = append(args, *params.RiskScore)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $1 AND status = ANY($%d)", argIdx)
	args = append(args, from)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = s.pool.QueryRow(ctx, `SELECT status FROM contracts WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get contract status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
}

func (s *PostgresStore) SetExtraction(ctx context.Context, id uuid.UUID, text string, pageCount int, warning *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE contracts SET extracted_text = $2, page_count = $3, warning = $4, updated_at = NOW()
		 WHERE id = $1`, id, text, pageCount, warning)
	if err != nil {
		return fmt.Errorf("set extraction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Analyses ---

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save analysis tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Clauses of the previous analysis go with it via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM analyses WHERE contract_id = $1`, a.ContractID); err != nil {
		return fmt.Errorf("delete previous analysis: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO analyses (id, contract_id, provider, risk_score, summary, risk_summary, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.ContractID, a.Provider, a.RiskScore, a.Summary, a.RiskSummary, a.CreatedAt); err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert analysis: %w", err)
	}

	if len(a.Clauses) > 0 {
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"clauses"},
			[]string{"id", "analysis_id", "category", "text", "risk_level", "explanation", "recommendation", "position"},
			pgx.CopyFromSlice(len(a.Clauses), func(i int) ([]any, error) {
				c := a.Clauses[i]
				return []any{c.ID, a.ID, string(c.Category), c.Text, string(c.RiskLevel),
					c.Explanation, c.Recommendation, c.Position}, nil
			}))
		if err != nil {
			return fmt.Errorf("insert clauses: %w", err)
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE contracts SET status = $2, risk_score = $3, error_message = NULL, updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		a.ContractID, models.ContractStatusCompleted, a.RiskScore, models.ContractStatusProcessing)
	if err != nil {
		return fmt.Errorf("complete contract: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: contract %s is not processing", ErrInvalidTransition, a.ContractID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisByContractID(ctx context.Context, contractID uuid.UUID) (*models.Analysis, error) {
	var a models.Analysis
	err := s.pool.QueryRow(ctx,
		`SELECT id, contract_id, provider, risk_score, summary, risk_summary, created_at
		 FROM analyses WHERE contract_id = $1`, contractID,
	).Scan(&a.ID, &a.ContractID, &a.Provider, &a.RiskScore, &a.Summary, &a.RiskSummary, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, analysis_id, category, text, risk_level, explanation, recommendation, position
		 FROM clauses WHERE analysis_id = $1 ORDER BY position`, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	defer rows.Close()

	a.Clauses = []models.Clause{}
	for rows.Next() {
		var (
			c                   models.Clause
			category, riskLevel string
		)
		if err := rows.Scan(&c.ID, &c.AnalysisID, &category, &c.Text, &riskLevel,
			&c.Explanation, &c.Recommendation, &c.Position); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		c.Category = models.ClauseCategory(category)
		c.RiskLevel = models.RiskLevel(riskLevel)
		a.Clauses = append(a.Clauses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clauses: %w", err)
	}
	return &a, nil
}

// normalizePage clamps page/limit to the API defaults and returns limit and offset.
func normalizePage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
