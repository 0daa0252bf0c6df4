package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContractStatusPending    = "pending"
	ContractStatusProcessing = "processing"
	ContractStatusCompleted  = "completed"
	ContractStatusFailed     = "failed"
)

// Contract is an uploaded document and the state of its analysis.
// The client triggers POST /api/v1/contracts/{id}/analyze and polls
// GET /api/v1/contracts/{id}/analysis until status is completed or failed.
type Contract struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	TenantID      uuid.UUID `db:"tenant_id"      json:"tenant_id"`
	FileName      string    `db:"file_name"      json:"file_name"`
	FileKey       string    `db:"file_key"       json:"-"`
	FileSize      int64     `db:"file_size"      json:"file_size"`
	ContentType   string    `db:"content_type"   json:"content_type"`
	PageCount     *int      `db:"page_count"     json:"page_count,omitempty"`
	ExtractedText *string   `db:"extracted_text" json:"-"`
	Status        string    `db:"status"         json:"status"`
	RiskScore     *float64  `db:"risk_score"     json:"risk_score,omitempty"`
	Warning       *string   `db:"warning"        json:"warning,omitempty"`
	ErrorMessage  *string   `db:"error_message"  json:"error_message,omitempty"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}
