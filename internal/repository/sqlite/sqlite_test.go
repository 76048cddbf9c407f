package sqlite

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestOpen_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	versions, err := s.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	versions, err = s.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
}

func TestParseMigrationVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"001_init.sql", 1, false},
		{"012_add_index.sql", 12, false},
		{"init.sql", 0, true},
		{"abc_init.sql", 0, true},
		{"000_zero.sql", 0, true},
		{"-3_negative.sql", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMigrationVersion(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfileRepository_CreateGetUpdate(t *testing.T) {
	repo := NewProfileRepository(newTestStore(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	p := domain.NewProfile(uuid.NewString(), ptr("tg-42"), now)
	require.NoError(t, repo.Create(ctx, p))
	require.ErrorIs(t, repo.Create(ctx, p), repository.ErrDuplicateKey)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	require.NotNil(t, got.OwnerID)
	assert.Equal(t, "tg-42", *got.OwnerID)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.Gender)
	assert.Len(t, got.MissingFields(), 13)

	got.ApplyStep(domain.Step1{Gender: ptr(domain.GenderFemale), Age: ptr(29), Height: ptr(168), Weight: ptr(61)}, now.Add(time.Second))
	got.ApplyStep(domain.Step5{HealthRestrictions: ptr(""), Preferences: ptr("no running")}, now.Add(2*time.Second))
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Gender)
	assert.Equal(t, domain.GenderFemale, *reloaded.Gender)
	assert.Equal(t, 29, *reloaded.Age)
	require.NotNil(t, reloaded.HealthRestrictions)
	assert.Equal(t, "", *reloaded.HealthRestrictions)
	assert.Equal(t, "no running", *reloaded.Preferences)
	assert.True(t, now.Equal(reloaded.CreatedAt))
	assert.True(t, now.Add(2*time.Second).Equal(reloaded.UpdatedAt))

	byOwner, err := repo.GetByOwner(ctx, "tg-42")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byOwner.ID)
}

func TestProfileRepository_SetGeneratedProgramKeepsAnswers(t *testing.T) {
	repo := NewProfileRepository(newTestStore(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := domain.NewProfile(uuid.NewString(), nil, now)
	p.ApplyStep(domain.Step1{Gender: ptr(domain.GenderMale), Age: ptr(55), Height: ptr(180), Weight: ptr(80)}, now)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.SetGeneratedProgram(ctx, p.ID, "PLAN-A", now.Add(time.Minute)))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 55, *got.Age)
	require.NotNil(t, got.GeneratedProgram)
	assert.Equal(t, "PLAN-A", *got.GeneratedProgram)
	assert.True(t, now.Add(time.Minute).Equal(got.UpdatedAt))

	err = repo.SetGeneratedProgram(ctx, "missing", "x", now)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepository_GetByOwnerReturnsNewest(t *testing.T) {
	repo := NewProfileRepository(newTestStore(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := domain.NewProfile(uuid.NewString(), ptr("owner"), base)
	newer := domain.NewProfile(uuid.NewString(), ptr("owner"), base.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.GetByOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestProfileRepository_NotFound(t *testing.T) {
	repo := NewProfileRepository(newTestStore(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByOwner(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Update(ctx, domain.NewProfile("missing", nil, time.Now()))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProgramRepository_AppendAndList(t *testing.T) {
	repo := NewProgramRepository(newTestStore(t))
	ctx := context.Background()

	profileID := uuid.NewString()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.TrainingProgram{
			ID:        uuid.NewString(),
			ProfileID: profileID,
			Content:   fmt.Sprintf("plan %d", i),
			CreatedAt: base,
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.TrainingProgram{
		ID: uuid.NewString(), ProfileID: uuid.NewString(), Content: "other", CreatedAt: base,
	}))

	programs, err := repo.ListByProfile(ctx, profileID)
	require.NoError(t, err)
	require.Len(t, programs, 3)
	for i, p := range programs {
		assert.Equal(t, fmt.Sprintf("plan %d", i), p.Content)
		assert.Equal(t, profileID, p.ProfileID)
		assert.True(t, base.Equal(p.CreatedAt))
	}

	empty, err := repo.ListByProfile(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProgramRepository_DuplicateID(t *testing.T) {
	repo := NewProgramRepository(newTestStore(t))
	ctx := context.Background()

	p := &domain.TrainingProgram{ID: "fixed", ProfileID: "profile", Content: "x", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, p))
	require.ErrorIs(t, repo.Create(ctx, p), repository.ErrDuplicateKey)
}
