package sqlite

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const profileColumns = `id, owner_id, gender, age, height, weight, goal, custom_goal, months,
	current_results, last_trained, workouts_per_week, workout_duration, training_style,
	health_restrictions, preferences, generated_program, created_at, updated_at`

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository returns a repository.ProfileRepository backed by s.
func NewProfileRepository(s *Store) repository.ProfileRepository {
	return &profileRepository{db: s.db}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, nullString(p.OwnerID),
		nullEnum(p.Gender), nullInt(p.Age), nullInt(p.Height), nullInt(p.Weight),
		nullEnum(p.Goal), nullString(p.CustomGoal), nullInt(p.Months),
		nullString(p.CurrentResults), nullEnum(p.LastTrained),
		nullInt(p.WorkoutsPerWeek), nullInt(p.WorkoutDuration), nullEnum(p.TrainingStyle),
		nullString(p.HealthRestrictions), nullString(p.Preferences), nullString(p.GeneratedProgram),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (r *profileRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM user_profiles
		WHERE owner_id = ? ORDER BY created_at DESC LIMIT 1`, ownerID)
	return scanProfile(row)
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user_profiles SET
		gender = ?, age = ?, height = ?, weight = ?,
		goal = ?, custom_goal = ?, months = ?,
		current_results = ?, last_trained = ?,
		workouts_per_week = ?, workout_duration = ?, training_style = ?,
		health_restrictions = ?, preferences = ?,
		generated_program = ?, updated_at = ?
		WHERE id = ?`,
		nullEnum(p.Gender), nullInt(p.Age), nullInt(p.Height), nullInt(p.Weight),
		nullEnum(p.Goal), nullString(p.CustomGoal), nullInt(p.Months),
		nullString(p.CurrentResults), nullEnum(p.LastTrained),
		nullInt(p.WorkoutsPerWeek), nullInt(p.WorkoutDuration), nullEnum(p.TrainingStyle),
		nullString(p.HealthRestrictions), nullString(p.Preferences),
		nullString(p.GeneratedProgram), formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *profileRepository) SetGeneratedProgram(ctx context.Context, id, content string, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_profiles SET generated_program = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(updatedAt), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	var (
		p                                                  domain.Profile
		ownerID, gender, goal, customGoal, currentResults  sql.NullString
		lastTrained, trainingStyle, health, prefs, program sql.NullString
		age, height, weight, months, perWeek, duration     sql.NullInt64
		createdAt, updatedAt                               string
	)

	err := row.Scan(&p.ID, &ownerID, &gender, &age, &height, &weight, &goal, &customGoal, &months,
		&currentResults, &lastTrained, &perWeek, &duration, &trainingStyle,
		&health, &prefs, &program, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.OwnerID = stringPtr(ownerID)
	p.Gender = enumPtr[domain.Gender](gender)
	p.Age = intPtr(age)
	p.Height = intPtr(height)
	p.Weight = intPtr(weight)
	p.Goal = enumPtr[domain.GoalType](goal)
	p.CustomGoal = stringPtr(customGoal)
	p.Months = intPtr(months)
	p.CurrentResults = stringPtr(currentResults)
	p.LastTrained = enumPtr[domain.TrainingExperience](lastTrained)
	p.WorkoutsPerWeek = intPtr(perWeek)
	p.WorkoutDuration = intPtr(duration)
	p.TrainingStyle = enumPtr[domain.TrainingStyle](trainingStyle)
	p.HealthRestrictions = stringPtr(health)
	p.Preferences = stringPtr(prefs)
	p.GeneratedProgram = stringPtr(program)

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullEnum[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func enumPtr[T ~string](v sql.NullString) *T {
	if !v.Valid {
		return nil
	}
	e := T(v.String)
	return &e
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
