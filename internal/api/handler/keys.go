package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/contractlens/internal/api/middleware"
	"github.com/kiranshivaraju/contractlens/internal/api/response"
	"github.com/kiranshivaraju/contractlens/internal/store"
	"github.com/kiranshivaraju/contractlens/pkg/models"
)

var knownScopes = map[string]bool{
	models.ScopeRead:    true,
	models.ScopeAnalyze: true,
	models.ScopeAdmin:   true,
}

// KeyHandler serves the admin API key endpoints.
type KeyHandler struct {
	store store.Store
}

// NewKeyHandler creates a KeyHandler.
func NewKeyHandler(st store.Store) *KeyHandler {
	return &KeyHandler{store: st}
}

type createdKey struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Scopes    []string  `json:"scopes"`
	CreatedAt time.Time `json:"created_at"`
}

// Create handles POST /api/v1/admin/keys. The raw key appears only in this response.
func (h *KeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req struct {
		Name   string   `json:"name"`
		Scopes []string `json:"scopes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
		return
	}
	if len(req.Scopes) == 0 {
		req.Scopes = []string{models.ScopeRead, models.ScopeAnalyze}
	}
	for _, s := range req.Scopes {
		if !knownScopes[s] {
			response.Error(w, http.StatusBadRequest, "INVALID_SCOPE",
				"Unknown scope: "+s, map[string]any{"allowed": []string{models.ScopeRead, models.ScopeAnalyze, models.ScopeAdmin}})
			return
		}
	}

	key, rawKey, err := mw.NewAPIKey(tenantID, req.Name, req.Scopes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.store.CreateAPIKey(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			response.Error(w, http.StatusConflict, "DUPLICATE_KEY", "API key already exists", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	response.Created(w, createdKey{
		ID:        key.ID,
		Name:      key.Name,
		Key:       rawKey,
		KeyPrefix: key.KeyPrefix,
		Scopes:    key.Scopes,
		CreatedAt: key.CreatedAt,
	})
}

// List handles GET /api/v1/admin/keys.
func (h *KeyHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	keys, err := h.store.ListAPIKeys(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if keys == nil {
		keys = []*models.APIKey{}
	}

	response.JSON(w, keys)
}

// Revoke handles DELETE /api/v1/admin/keys/{keyID}.
func (h *KeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	keyID, err := uuid.Parse(chi.URLParam(r, "keyID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_KEY_ID", "Invalid key ID", nil)
		return
	}

	if err := h.store.RevokeAPIKey(r.Context(), keyID, tenantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "KEY_NOT_FOUND", "API key not found", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	response.NoContent(w)
}
