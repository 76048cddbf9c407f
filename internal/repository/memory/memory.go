// Package memory keeps profiles and programs in process memory.
// It backs the "memory" database driver and the service tests.
package memory

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"sync"
	"time"
)

// ProfileRepository is a map-backed repository.ProfileRepository.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

// NewProfileRepository returns an empty repository.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]domain.Profile)}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Profile
	for _, p := range r.profiles {
		if p.OwnerID == nil || *p.OwnerID != ownerID {
			continue
		}
		if found == nil || p.CreatedAt.After(found.CreatedAt) {
			p := p
			found = &p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; exists {
		return repository.ErrDuplicateKey
	}
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.ID]; !exists {
		return repository.ErrNotFound
	}
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *ProfileRepository) SetGeneratedProgram(ctx context.Context, id, content string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.profiles[id]
	if !exists {
		return repository.ErrNotFound
	}
	p.SetGeneratedProgram(content, updatedAt)
	r.profiles[id] = p
	return nil
}

// ProgramRepository is an append-only slice-backed repository.ProgramRepository.
type ProgramRepository struct {
	mu       sync.RWMutex
	programs []domain.TrainingProgram
}

// NewProgramRepository returns an empty repository.
func NewProgramRepository() *ProgramRepository {
	return &ProgramRepository{}
}

func (r *ProgramRepository) Create(ctx context.Context, program *domain.TrainingProgram) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.programs {
		if existing.ID == program.ID {
			return repository.ErrDuplicateKey
		}
	}
	r.programs = append(r.programs, *program)
	return nil
}

func (r *ProgramRepository) ListByProfile(ctx context.Context, profileID string) ([]domain.TrainingProgram, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	programs := []domain.TrainingProgram{}
	for _, p := range r.programs {
		if p.ProfileID == profileID {
			programs = append(programs, p)
		}
	}
	return programs, nil
}
