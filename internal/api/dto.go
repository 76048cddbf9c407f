package api

import (
	"alcyxob/fitgen/internal/domain"
	"time"
)

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	OwnerID *string `json:"ownerId" binding:"omitempty,min=1,max=64"`
}

// ProfileResponse is the questionnaire state shown to front-ends.
// Answers uses the same field names as the step payloads.
type ProfileResponse struct {
	SessionID     string         `json:"sessionId"`
	OwnerID       *string        `json:"ownerId,omitempty"`
	Answers       map[string]any `json:"answers"`
	IsComplete    bool           `json:"isComplete"`
	MissingFields []string       `json:"missingFields"`
	HasProgram    bool           `json:"hasProgram"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// MapProfileToResponse converts a domain.Profile to ProfileResponse DTO.
func MapProfileToResponse(p *domain.Profile) ProfileResponse {
	if p == nil {
		return ProfileResponse{}
	}
	missing := p.MissingFields()
	if missing == nil {
		missing = []string{}
	}
	return ProfileResponse{
		SessionID:     p.ID,
		OwnerID:       p.OwnerID,
		Answers:       p.Payload(),
		IsComplete:    len(missing) == 0,
		MissingFields: missing,
		HasProgram:    p.GeneratedProgram != nil,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CreateSessionResponse is returned by POST /sessions.
type CreateSessionResponse struct {
	SessionID string          `json:"sessionId"`
	Profile   ProfileResponse `json:"profile"`
}

// ProgramResponse is the DTO for a generated program.
type ProgramResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapProgramToResponse converts a domain.TrainingProgram to ProgramResponse DTO.
func MapProgramToResponse(p *domain.TrainingProgram) ProgramResponse {
	if p == nil {
		return ProgramResponse{}
	}
	return ProgramResponse{
		ID:        p.ID,
		SessionID: p.ProfileID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}

// ExportResponse carries a temporary download link.
type ExportResponse struct {
	URL string `json:"url"`
}
