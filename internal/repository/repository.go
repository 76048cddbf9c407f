package repository

import (
	"alcyxob/fitgen/internal/domain"
	"context"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProfileRepository persists questionnaire profiles.
// Every call is an independent single-record operation.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// GetByOwner returns the most recently created profile of an external owner.
	GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	// Update replaces the stored record; ErrNotFound if the id is unknown.
	Update(ctx context.Context, profile *domain.Profile) error
	// SetGeneratedProgram writes only the latest program text and updatedAt.
	// Step answers stored by concurrent updates are left as they are.
	SetGeneratedProgram(ctx context.Context, id, content string, updatedAt time.Time) error
}

// ProgramRepository persists generated programs. It is append-only.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.TrainingProgram) error
	// ListByProfile returns every program of a profile in storage order.
	ListByProfile(ctx context.Context, profileID string) ([]domain.TrainingProgram, error)
}
