package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/contractlens/internal/analysis"
	"github.com/kiranshivaraju/contractlens/internal/cache"
	"github.com/kiranshivaraju/contractlens/internal/config"
	"github.com/kiranshivaraju/contractlens/internal/extract"
	"github.com/kiranshivaraju/contractlens/internal/storage"
	"github.com/kiranshivaraju/contractlens/internal/store"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

const (
	persistTimeout     = 30 * time.Second
	maxErrorMessageLen = 2000
)

// AnalysisStatus is the current state of a contract's analysis run.
type AnalysisStatus struct {
	ContractID   uuid.UUID        `json:"contract_id"`
	Status       string           `json:"status"`
	ErrorMessage *string          `json:"error_message,omitempty"`
	Analysis     *models.Analysis `json:"analysis,omitempty"`
}

// AnalysisService owns the analysis run lifecycle: status transitions, usage
// accounting, text extraction, orchestration and persistence.
type AnalysisService struct {
	client       models.AnalysisClient
	orchestrator *analysis.Orchestrator
	store        store.Store
	cache        cache.Cache
	files        storage.Storage
	extractor    extract.Extractor
	timeout      time.Duration
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// NewAnalysisService creates a new AnalysisService. client may be nil when no
// AI provider is configured; runs are then refused with ErrConfiguration.
func NewAnalysisService(client models.AnalysisClient, st store.Store, ca cache.Cache, files storage.Storage, ex extract.Extractor, cfg config.AnalysisConfig) *AnalysisService {
	s := &AnalysisService{
		client:    client,
		store:     st,
		cache:     ca,
		files:     files,
		extractor: ex,
		timeout:   cfg.Timeout,
		logger:    slog.Default(),
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Minute
	}
	if client != nil {
		s.orchestrator = analysis.NewOrchestrator(client,
			analysis.WithConcurrency(cfg.ChunkConcurrency),
			analysis.WithLogger(s.logger))
	}
	return s
}

// Configured reports whether an AI provider is available.
func (s *AnalysisService) Configured() bool {
	return s.client != nil
}

// TriggerAnalysis moves the contract to processing and dispatches the run in a
// background goroutine. It returns as soon as the run is accepted.
func (s *AnalysisService) TriggerAnalysis(ctx context.Context, contractID, tenantID uuid.UUID) (*models.Contract, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: no AI provider configured", ErrConfiguration)
	}

	contract, err := s.store.BeginAnalysis(ctx, contractID, tenantID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetRunStatus(ctx, contract.ID, models.ContractStatusProcessing)
	_ = s.cache.InvalidateAnalysis(ctx, contract.ID)

	s.wg.Add(1)
	go s.runAnalysis(contract)

	return contract, nil
}

// Wait blocks until all dispatched runs have finished.
func (s *AnalysisService) Wait() {
	s.wg.Wait()
}

// runAnalysis performs one run. It recovers from panics and always leaves the
// contract completed or failed.
func (s *AnalysisService) runAnalysis(contract *models.Contract) {
	defer s.wg.Done()

	logger := s.logger.With("contract_id", contract.ID, "provider", s.client.Name())

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in runAnalysis", "error", r)
			s.fail(contract.ID, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.analyze(ctx, contract)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %v", ErrRunTimeout, s.timeout, err)
		}
		logger.Error("analysis failed", "error", err, "duration", time.Since(start))
		s.fail(contract.ID, err)
		return
	}

	result.OverallRiskScore = clampScore(result.OverallRiskScore)
	a := models.NewAnalysis(contract.ID, s.client.Name(), result)

	persistCtx, cancelPersist := context.WithTimeout(context.Background(), persistTimeout)
	defer cancelPersist()

	if err := s.store.SaveAnalysis(persistCtx, a); err != nil {
		logger.Error("storing analysis failed", "error", err)
		s.fail(contract.ID, fmt.Errorf("storing analysis: %w", err))
		return
	}

	_ = s.cache.SetRunStatus(persistCtx, contract.ID, models.ContractStatusCompleted)
	_ = s.cache.InvalidateAnalysis(persistCtx, contract.ID)

	logger.Info("analysis completed",
		"risk_score", a.RiskScore,
		"clauses", len(a.Clauses),
		"duration", time.Since(start))
}

// analyze resolves the contract text and runs the orchestrator over it.
func (s *AnalysisService) analyze(ctx context.Context, contract *models.Contract) (models.AnalysisResult, error) {
	text, err := s.contractText(ctx, contract)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return s.orchestrator.Analyze(ctx, text)
}

// contractText reuses previously extracted text, or extracts it from the
// stored file and records it on the contract.
func (s *AnalysisService) contractText(ctx context.Context, contract *models.Contract) (string, error) {
	if contract.ExtractedText != nil && utf8.RuneCountInString(strings.TrimSpace(*contract.ExtractedText)) >= extract.MinTextChars {
		return *contract.ExtractedText, nil
	}

	data, err := s.files.Get(ctx, contract.FileKey)
	if err != nil {
		return "", fmt.Errorf("loading file: %w", err)
	}

	ft, err := extract.DetectFileType(contract.ContentType, contract.FileName)
	if err != nil {
		return "", err
	}

	res, err := s.extractor.Extract(data, ft)
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	if err := extract.CheckSufficient(res); err != nil {
		return "", err
	}

	var warning *string
	if res.Warning != "" {
		warning = &res.Warning
	}
	if err := s.store.SetExtraction(ctx, contract.ID, res.Text, res.PageCount, warning); err != nil {
		return "", fmt.Errorf("saving extracted text: %w", err)
	}

	return res.Text, nil
}

// fail marks the contract failed. It uses a fresh context so the status is
// recorded even after the run deadline.
func (s *AnalysisService) fail(contractID uuid.UUID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg := truncateString(cause.Error(), maxErrorMessageLen)
	if err := s.store.UpdateContractStatus(ctx, contractID, models.ContractStatusFailed,
		store.WithErrorMessage(msg)); err != nil {
		s.logger.Error("marking contract failed", "contract_id", contractID, "error", err)
	}
	_ = s.cache.SetRunStatus(ctx, contractID, models.ContractStatusFailed)
}

// GetAnalysisStatus returns the run status of a contract, from the cache when
// possible, together with the stored analysis once completed.
func (s *AnalysisService) GetAnalysisStatus(ctx context.Context, contractID, tenantID uuid.UUID) (*AnalysisStatus, error) {
	contract, err := s.store.GetContract(ctx, contractID, tenantID)
	if err != nil {
		return nil, err
	}

	status := contract.Status
	if cached, ok, err := s.cache.GetRunStatus(ctx, contractID); err == nil && ok {
		status = cached
	}

	out := &AnalysisStatus{ContractID: contractID, Status: status}
	switch status {
	case models.ContractStatusFailed:
		out.ErrorMessage = contract.ErrorMessage
	case models.ContractStatusCompleted:
		a, err := s.GetAnalysis(ctx, contractID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		out.Analysis = a
	}
	return out, nil
}

// GetAnalysis loads a contract's analysis through the read-through cache.
func (s *AnalysisService) GetAnalysis(ctx context.Context, contractID uuid.UUID) (*models.Analysis, error) {
	if data, ok, err := s.cache.GetAnalysis(ctx, contractID); err == nil && ok {
		var a models.Analysis
		if err := json.Unmarshal(data, &a); err == nil {
			return &a, nil
		}
	}

	a, err := s.store.GetAnalysisByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(a); err == nil {
		_ = s.cache.SetAnalysis(ctx, contractID, data)
	}
	return a, nil
}

// clampScore bounds a model-reported risk score to [1, 10].
func clampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
