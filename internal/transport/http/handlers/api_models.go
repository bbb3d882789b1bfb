package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(_ *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{Error: errorMsg}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// KeepTokenRequest carries the relayed OAuth callback fragment.
type KeepTokenRequest struct {
	Token string `json:"token" binding:"required"`
	State string `json:"state" binding:"required"`
}

// LoginCompletedResponse reports the derived wallet for a completed login.
type LoginCompletedResponse struct {
	Address         string `json:"address"`
	Network         string `json:"network"`
	ValidUntilEpoch uint64 `json:"valid_until_epoch"`
}

// HealthResponse describes liveness probe results.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}
