package sqlite

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"context"
	"database/sql"
)

type programRepository struct {
	db *sql.DB
}

// NewProgramRepository returns a repository.ProgramRepository backed by s.
func NewProgramRepository(s *Store) repository.ProgramRepository {
	return &programRepository{db: s.db}
}

func (r *programRepository) Create(ctx context.Context, p *domain.TrainingProgram) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO training_programs (id, user_profile_id, content, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.ProfileID, p.Content, formatTime(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func (r *programRepository) ListByProfile(ctx context.Context, profileID string) ([]domain.TrainingProgram, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_profile_id, content, created_at FROM training_programs
		WHERE user_profile_id = ? ORDER BY seq ASC`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := []domain.TrainingProgram{}
	for rows.Next() {
		var (
			p         domain.TrainingProgram
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.Content, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}
