package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/contractlens/internal/store"
	"github.com/kiranshivaraju/contractlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("contractlens_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

// defaultTenantID returns the UUID of the seeded default tenant.
func defaultTenantID(t *testing.T, s store.Store) uuid.UUID {
	t.Helper()
	tenant, err := s.GetDefaultTenant(context.Background())
	require.NoError(t, err)
	return tenant.ID
}

// --- Tenant Tests ---

func TestGetDefaultTenant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	tenant, err := s.GetDefaultTenant(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", tenant.Name)
	assert.Equal(t, 0, tenant.ContractsAnalyzed)
	assert.Equal(t, 100, tenant.MonthlyLimit)
	assert.True(t, tenant.HasQuota())
	assert.NotEqual(t, uuid.Nil, tenant.ID)
}

// --- API Key Tests ---

func TestAPIKey_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	now := time.Now().UTC().Truncate(time.Microsecond)
	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "test-key",
		KeyHash:   "bcrypt-hash-here",
		KeyPrefix: "cl_abcd",
		Scopes:    []string{"analyze", "read"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.CreateAPIKey(ctx, key)
	require.NoError(t, err)

	// Get by prefix
	keys, err := s.GetAPIKeyByPrefix(ctx, "cl_abcd")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.ID, keys[0].ID)
	assert.Equal(t, "test-key", keys[0].Name)
}

func TestAPIKey_List(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		err := s.CreateAPIKey(ctx, &models.APIKey{
			ID:        uuid.New(),
			TenantID:  tenantID,
			Name:      "key-" + uuid.NewString()[:4],
			KeyHash:   "hash-" + uuid.NewString()[:4],
			KeyPrefix: "cl_" + uuid.NewString()[:4],
			Scopes:    []string{"read"},
			CreatedAt: now,
			UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	keys, err := s.ListAPIKeys(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestAPIKey_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "revoke-me",
		KeyHash:   "hash",
		KeyPrefix: "cl_revk",
		Scopes:    []string{"read"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	// Revoke
	err := s.RevokeAPIKey(ctx, key.ID, tenantID)
	require.NoError(t, err)

	// Should not appear in list or prefix lookup
	keys, err := s.ListAPIKeys(ctx, tenantID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = s.GetAPIKeyByPrefix(ctx, "cl_revk")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAPIKey_RevokeNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.RevokeAPIKey(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAPIKey_UpdateLastUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "usage-key",
		KeyHash:   "hash",
		KeyPrefix: "cl_used",
		Scopes:    []string{"read"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	err := s.UpdateAPIKeyLastUsed(ctx, key.ID)
	require.NoError(t, err)

	keys, err := s.GetAPIKeyByPrefix(ctx, "cl_used")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)
}

func TestAPIKey_DuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	id := uuid.New()
	key := &models.APIKey{
		ID: id, TenantID: tenantID, Name: "dup1", KeyHash: "h1", KeyPrefix: "cl_dup1",
		Scopes: []string{"read"}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	key2 := &models.APIKey{
		ID: id, TenantID: tenantID, Name: "dup2", KeyHash: "h2", KeyPrefix: "cl_dup2",
		Scopes: []string{"read"}, CreatedAt: now, UpdatedAt: now,
	}
	err := s.CreateAPIKey(ctx, key2)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestGetTenant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	tenant, err := s.GetTenant(ctx, defaultTenantID(t, s))
	require.NoError(t, err)
	assert.Equal(t, "default", tenant.Name)

	_, err = s.GetTenant(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Contract Tests ---

func newContract(tenantID uuid.UUID) *models.Contract {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.New()
	return &models.Contract{
		ID:          id,
		TenantID:    tenantID,
		FileName:    "msa.pdf",
		FileKey:     tenantID.String() + "/" + id.String() + "/msa.pdf",
		FileSize:    2048,
		ContentType: "application/pdf",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestContract_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))

	got, err := s.GetContract(ctx, c.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "msa.pdf", got.FileName)
	assert.Equal(t, c.FileKey, got.FileKey)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.Equal(t, models.ContractStatusPending, got.Status)
	assert.Nil(t, got.PageCount)
	assert.Nil(t, got.ExtractedText)
	assert.Nil(t, got.RiskScore)
}

func TestContract_GetOtherTenant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	c := newContract(defaultTenantID(t, s))
	require.NoError(t, s.CreateContract(ctx, c))

	_, err := s.GetContract(ctx, c.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContract_DuplicateFileKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	first := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, first))

	second := newContract(tenantID)
	second.FileKey = first.FileKey
	assert.ErrorIs(t, s.CreateContract(ctx, second), store.ErrDuplicateKey)
}

func TestContract_ListPaginatesNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		c := newContract(tenantID)
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		c.UpdatedAt = c.CreatedAt
		require.NoError(t, s.CreateContract(ctx, c))
		ids = append(ids, c.ID)
	}

	page1, total, err := s.ListContracts(ctx, store.ContractFilter{TenantID: tenantID, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, ids[4], page1[0].ID)
	assert.Equal(t, ids[3], page1[1].ID)

	page3, _, err := s.ListContracts(ctx, store.ContractFilter{TenantID: tenantID, Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, ids[0], page3[0].ID)
}

func TestContract_ListWithStatusFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	pending := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, pending))
	started := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, started))
	_, err := s.BeginAnalysis(ctx, started.ID, tenantID)
	require.NoError(t, err)

	list, total, err := s.ListContracts(ctx, store.ContractFilter{
		TenantID: tenantID,
		Status:   models.ContractStatusProcessing,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, started.ID, list[0].ID)
}

func TestContract_ListEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	list, total, err := s.ListContracts(context.Background(), store.ContractFilter{TenantID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestContract_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))
	require.NoError(t, s.DeleteContract(ctx, c.ID, tenantID))

	_, err := s.GetContract(ctx, c.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteContract(ctx, c.ID, tenantID), store.ErrNotFound)
}

func TestContract_SetExtraction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))

	warning := "little text extracted"
	require.NoError(t, s.SetExtraction(ctx, c.ID, "This Agreement is made between the parties.", 3, &warning))

	got, err := s.GetContract(ctx, c.ID, tenantID)
	require.NoError(t, err)
	require.NotNil(t, got.ExtractedText)
	assert.Equal(t, "This Agreement is made between the parties.", *got.ExtractedText)
	require.NotNil(t, got.PageCount)
	assert.Equal(t, 3, *got.PageCount)
	require.NotNil(t, got.Warning)
	assert.Equal(t, warning, *got.Warning)

	assert.ErrorIs(t, s.SetExtraction(ctx, uuid.New(), "x", 1, nil), store.ErrNotFound)
}

// --- Analysis Lifecycle Tests ---

func TestBeginAnalysis_MarksProcessingAndCountsUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))

	got, err := s.BeginAnalysis(ctx, c.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusProcessing, got.Status)

	tenant, err := s.GetTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, tenant.ContractsAnalyzed)
}

func TestBeginAnalysis_SecondTriggerRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))

	_, err := s.BeginAnalysis(ctx, c.ID, tenantID)
	require.NoError(t, err)

	_, err = s.BeginAnalysis(ctx, c.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrAnalysisInProgress)

	// The rejected trigger must not consume quota.
	tenant, err := s.GetTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, tenant.ContractsAnalyzed)
}

func TestBeginAnalysis_ConcurrentTriggersOnlyOneWins(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := s.BeginAnalysis(ctx, c.ID, tenantID)
			errs <- err
		}()
	}

	var ok, inProgress int
	for i := 0; i < n; i++ {
		err := <-errs
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrAnalysisInProgress):
			inProgress++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, inProgress)
}

func TestBeginAnalysis_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.BeginAnalysis(context.Background(), uuid.New(), defaultTenantID(t, s))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBeginAnalysis_UsageLimitReached(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	_, err := pool.Exec(ctx, `UPDATE tenants SET monthly_limit = 1 WHERE id = $1`, tenantID)
	require.NoError(t, err)

	first := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, first))
	_, err = s.BeginAnalysis(ctx, first.ID, tenantID)
	require.NoError(t, err)

	second := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, second))
	_, err = s.BeginAnalysis(ctx, second.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrUsageLimitReached)

	// The status change is rolled back with the usage check.
	got, err := s.GetContract(ctx, second.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPending, got.Status)
}

func TestUpdateContractStatus_ProcessingToFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))
	_, err := s.BeginAnalysis(ctx, c.ID, tenantID)
	require.NoError(t, err)

	err = s.UpdateContractStatus(ctx, c.ID, models.ContractStatusFailed, store.WithErrorMessage("provider unavailable"))
	require.NoError(t, err)

	got, err := s.GetContract(ctx, c.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "provider unavailable", *got.ErrorMessage)

	// A failed contract can be re-analyzed; the old error is cleared.
	_, err = s.BeginAnalysis(ctx, c.ID, tenantID)
	require.NoError(t, err)
	got, err = s.GetContract(ctx, c.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusProcessing, got.Status)
	assert.Nil(t, got.ErrorMessage)
}

func TestUpdateContractStatus_InvalidTransition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	c := newContract(defaultTenantID(t, s))
	require.NoError(t, s.CreateContract(ctx, c))

	// pending -> completed skips processing.
	err := s.UpdateContractStatus(ctx, c.ID, models.ContractStatusCompleted, store.WithRiskScore(5))
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	err = s.UpdateContractStatus(ctx, c.ID, models.ContractStatusPending)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)
}

func TestUpdateContractStatus_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.UpdateContractStatus(context.Background(), uuid.New(), models.ContractStatusFailed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Analysis Tests ---

func newAnalysis(contractID uuid.UUID, score float64, texts ...string) *models.Analysis {
	result := models.AnalysisResult{
		Summary:          "Master services agreement between Acme and Globex.",
		OverallRiskScore: score,
		RiskSummary:      "Uncapped indemnity is the main concern.",
	}
	for _, text := range texts {
		result.Clauses = append(result.Clauses, models.ClauseResult{
			Category:       models.CategoryIndemnification,
			ExactText:      text,
			RiskLevel:      models.RiskHigh,
			Explanation:    "Broad indemnity.",
			Recommendation: "Cap the indemnity.",
		})
	}
	a := models.NewAnalysis(contractID, "mock", result)
	a.CreatedAt = a.CreatedAt.Truncate(time.Microsecond)
	return a
}

func startedContract(t *testing.T, s store.Store) *models.Contract {
	t.Helper()
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	c := newContract(tenantID)
	require.NoError(t, s.CreateContract(ctx, c))
	_, err := s.BeginAnalysis(ctx, c.ID, tenantID)
	require.NoError(t, err)
	return c
}

func TestSaveAnalysis_CompletesContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	c := startedContract(t, s)

	a := newAnalysis(c.ID, 7.5, "Supplier shall indemnify.", "Customer shall indemnify.")
	require.NoError(t, s.SaveAnalysis(ctx, a))

	got, err := s.GetAnalysisByContractID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "mock", got.Provider)
	assert.InDelta(t, 7.5, got.RiskScore, 0.001)
	require.Len(t, got.Clauses, 2)
	assert.Equal(t, "Supplier shall indemnify.", got.Clauses[0].Text)
	assert.Equal(t, 0, got.Clauses[0].Position)
	assert.Equal(t, "Customer shall indemnify.", got.Clauses[1].Text)
	assert.Equal(t, models.CategoryIndemnification, got.Clauses[1].Category)
	assert.Equal(t, models.RiskHigh, got.Clauses[1].RiskLevel)

	contract, err := s.GetContract(ctx, c.ID, c.TenantID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusCompleted, contract.Status)
	require.NotNil(t, contract.RiskScore)
	assert.InDelta(t, 7.5, *contract.RiskScore, 0.001)
}

func TestSaveAnalysis_ReplacesPrevious(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	c := startedContract(t, s)

	require.NoError(t, s.SaveAnalysis(ctx, newAnalysis(c.ID, 4, "old one", "old two", "old three")))

	_, err := s.BeginAnalysis(ctx, c.ID, c.TenantID)
	require.NoError(t, err)
	second := newAnalysis(c.ID, 8, "new one")
	require.NoError(t, s.SaveAnalysis(ctx, second))

	got, err := s.GetAnalysisByContractID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	require.Len(t, got.Clauses, 1)
	assert.Equal(t, "new one", got.Clauses[0].Text)

	var clauseRows int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM clauses`).Scan(&clauseRows))
	assert.Equal(t, 1, clauseRows)
}

func TestSaveAnalysis_NoClauses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	c := startedContract(t, s)

	require.NoError(t, s.SaveAnalysis(ctx, newAnalysis(c.ID, 2)))

	got, err := s.GetAnalysisByContractID(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Clauses)
	assert.Empty(t, got.Clauses)
}

func TestSaveAnalysis_RequiresProcessing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	c := newContract(defaultTenantID(t, s))
	require.NoError(t, s.CreateContract(ctx, c))

	err := s.SaveAnalysis(ctx, newAnalysis(c.ID, 5, "clause"))
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// Nothing is left behind by the rolled back transaction.
	_, err = s.GetAnalysisByContractID(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteContract_CascadesAnalysis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	c := startedContract(t, s)
	require.NoError(t, s.SaveAnalysis(ctx, newAnalysis(c.ID, 5, "clause")))

	require.NoError(t, s.DeleteContract(ctx, c.ID, c.TenantID))

	_, err := s.GetAnalysisByContractID(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetAnalysisByContractID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetAnalysisByContractID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Ping Test ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.Ping(context.Background())
	assert.NoError(t, err)
}
