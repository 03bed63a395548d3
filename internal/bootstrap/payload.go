// Package bootstrap reads the initial state the server embeds in the
// dashboard page: who the user is, their role, the anti-forgery token and
// when the pipeline last ran. The payload is read once per process.
package bootstrap

import (
	"strings"
	"time"

	"cosurvival/internal/dashboard/models"
)

// Payload is the embedded initial state. Every field is optional; the zero
// value means "not yet known".
type Payload struct {
	CSRFToken       string     `json:"csrfToken,omitempty"`
	CurrentUser     string     `json:"currentUser,omitempty"`
	UserRole        string     `json:"userRole,omitempty"`
	LastPipelineRun *time.Time `json:"lastPipelineRun,omitempty"`
}

// IsEmpty reports whether the payload carries no information at all.
func (p Payload) IsEmpty() bool {
	return p.CSRFToken == "" && p.CurrentUser == "" && p.UserRole == "" && p.LastPipelineRun == nil
}

// Identity merges the payload over defaults field by field.
func (p Payload) Identity(defaults models.Identity) models.Identity {
	id := defaults
	if user := strings.TrimSpace(p.CurrentUser); user != "" {
		id.UserID = user
	}
	if role := strings.TrimSpace(p.UserRole); role != "" {
		id.UserRole = models.Role(strings.ToLower(role))
	}
	if p.CSRFToken != "" {
		id.CSRFToken = p.CSRFToken
	}
	return id
}
