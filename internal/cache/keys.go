package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func AnalysisKey(contractID uuid.UUID) string {
	return fmt.Sprintf("analysis:%s", contractID)
}

func RunStatusKey(contractID uuid.UUID) string {
	return fmt.Sprintf("run:%s", contractID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
