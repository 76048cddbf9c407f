package service

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	logctx "alcyxob/fitgen/internal/pkg/log"

	"github.com/google/uuid"
)

// ProgramGenerator turns a profile payload into program text.
type ProgramGenerator interface {
	GenerateProgram(ctx context.Context, payload map[string]any) (string, error)
}

// ProgramExporter stores exported programs and hands out download links.
type ProgramExporter interface {
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

// ProfileService drives the questionnaire and program generation workflow.
type ProfileService interface {
	CreateProfile(ctx context.Context, ownerID *string) (*domain.Profile, error)
	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error)
	UpdateStep(ctx context.Context, profileID string, update domain.StepUpdate) (*domain.Profile, error)
	GenerateProgram(ctx context.Context, profileID string) (*domain.TrainingProgram, error)
	ListPrograms(ctx context.Context, profileID string) ([]domain.TrainingProgram, error)
	LatestProgram(ctx context.Context, profileID string) (*domain.TrainingProgram, error)
	ExportProgram(ctx context.Context, profileID, programID string) (string, error)
}

type profileService struct {
	profiles  repository.ProfileRepository
	programs  repository.ProgramRepository
	generator ProgramGenerator
	exporter  ProgramExporter
	now       func() time.Time
}

// NewProfileService wires the workflow. exporter may be nil, in which case
// ExportProgram returns ErrExportUnavailable.
func NewProfileService(
	profiles repository.ProfileRepository,
	programs repository.ProgramRepository,
	generator ProgramGenerator,
	exporter ProgramExporter,
) ProfileService {
	return &profileService{
		profiles:  profiles,
		programs:  programs,
		generator: generator,
		exporter:  exporter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) CreateProfile(ctx context.Context, ownerID *string) (*domain.Profile, error) {
	const op = "service.CreateProfile"

	p := domain.NewProfile(uuid.NewString(), ownerID, s.now())
	if err := s.profiles.Create(ctx, p); err != nil {
		logctx.From(ctx).Error("create profile failed", slog.String("op", op), slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("profile created", slog.String("op", op), slog.String("profile_id", p.ID))
	return p, nil
}

func (s *profileService) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	const op = "service.GetProfile"

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, s.profileError(ctx, op, err)
	}
	return p, nil
}

func (s *profileService) GetProfileByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	const op = "service.GetProfileByOwner"

	p, err := s.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.profileError(ctx, op, err)
	}
	return p, nil
}

func (s *profileService) UpdateStep(ctx context.Context, profileID string, update domain.StepUpdate) (*domain.Profile, error) {
	const op = "service.UpdateStep"

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, s.profileError(ctx, op, err)
	}

	if err := update.Validate(); err != nil {
		logctx.From(ctx).Warn("step rejected",
			slog.String("op", op), slog.String("profile_id", profileID),
			slog.Int("step", update.Number()), slog.Any("err", err))
		return nil, err
	}

	p.ApplyStep(update, s.now())
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, s.profileError(ctx, op, err)
	}

	logctx.From(ctx).Info("step applied",
		slog.String("op", op), slog.String("profile_id", profileID),
		slog.Int("step", update.Number()), slog.Bool("complete", p.IsComplete()))
	return p, nil
}

func (s *profileService) GenerateProgram(ctx context.Context, profileID string) (*domain.TrainingProgram, error) {
	const op = "service.GenerateProgram"
	log := logctx.From(ctx).With(slog.String("op", op), slog.String("profile_id", profileID))

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, s.profileError(ctx, op, err)
	}

	if missing := p.MissingFields(); len(missing) > 0 {
		log.Warn("generation refused", slog.Any("missing", missing))
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, ", "))
	}

	started := time.Now()
	content, err := s.generator.GenerateProgram(ctx, p.Payload())
	if err != nil {
		log.Error("generation failed", slog.Duration("dur", time.Since(started)), slog.Any("err", err))
		return nil, &LLMServiceError{Message: err.Error(), Err: err}
	}
	log.Info("program generated", slog.Duration("dur", time.Since(started)), slog.Int("length", len(content)))

	now := s.now()
	program := &domain.TrainingProgram{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.programs.Create(ctx, program); err != nil {
		log.Error("store program failed", slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The program record is authoritative; a stale profile copy is tolerated.
	// Only the program text is written so that steps applied while the
	// gateway was working survive.
	if err := s.profiles.SetGeneratedProgram(ctx, p.ID, content, now); err != nil {
		log.Warn("update generated program on profile failed", slog.Any("err", err))
	}

	return program, nil
}

func (s *profileService) ListPrograms(ctx context.Context, profileID string) ([]domain.TrainingProgram, error) {
	const op = "service.ListPrograms"

	if _, err := s.profiles.GetByID(ctx, profileID); err != nil {
		return nil, s.profileError(ctx, op, err)
	}

	programs, err := s.programs.ListByProfile(ctx, profileID)
	if err != nil {
		logctx.From(ctx).Error("list programs failed", slog.String("op", op), slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return programs, nil
}

func (s *profileService) LatestProgram(ctx context.Context, profileID string) (*domain.TrainingProgram, error) {
	programs, err := s.ListPrograms(ctx, profileID)
	if err != nil {
		return nil, err
	}

	latest := domain.LatestProgram(programs)
	if latest == nil {
		return nil, ErrProgramNotFound
	}
	return latest, nil
}

func (s *profileService) ExportProgram(ctx context.Context, profileID, programID string) (string, error) {
	const op = "service.ExportProgram"

	if s.exporter == nil {
		return "", ErrExportUnavailable
	}

	programs, err := s.ListPrograms(ctx, profileID)
	if err != nil {
		return "", err
	}

	var program *domain.TrainingProgram
	for i := range programs {
		if programs[i].ID == programID {
			program = &programs[i]
			break
		}
	}
	if program == nil {
		return "", ErrProgramNotFound
	}

	key := fmt.Sprintf("programs/%s/%s.txt", profileID, programID)
	if err := s.exporter.PutObject(ctx, key, "text/plain; charset=utf-8", []byte(program.Content)); err != nil {
		logctx.From(ctx).Error("export upload failed", slog.String("op", op), slog.String("key", key), slog.Any("err", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.exporter.GeneratePresignedDownloadURL(ctx, key, 0)
	if err != nil {
		logctx.From(ctx).Error("presign failed", slog.String("op", op), slog.String("key", key), slog.Any("err", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("program exported", slog.String("op", op), slog.String("key", key))
	return url, nil
}

// profileError maps a profile store error to the service vocabulary.
func (s *profileService) profileError(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProfileNotFound
	}
	logctx.From(ctx).Error("profile store failed", slog.String("op", op), slog.Any("err", err))
	return fmt.Errorf("%s: %w", op, err)
}
