package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Problem is one catalog entry the interviewer can pick for a room
type Problem struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty,omitempty"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"-"`
}

// ListProblems returns the catalog ordered by title
func (p *Postgres) ListProblems(ctx context.Context, limit, offset int) ([]Problem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, title, difficulty, content, created_at
		FROM problems
		ORDER BY title
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Problem
	for rows.Next() {
		var pr Problem
		if err := rows.Scan(&pr.ID, &pr.Title, &pr.Difficulty, &pr.Content, &pr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// GetProblem fetches one problem by id
func (p *Postgres) GetProblem(ctx context.Context, id int64) (Problem, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, title, difficulty, content, created_at
		FROM problems
		WHERE id = $1
	`, id)

	var pr Problem
	if err := row.Scan(&pr.ID, &pr.Title, &pr.Difficulty, &pr.Content, &pr.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Problem{}, errors.New("problem not found")
		}
		return Problem{}, err
	}
	return pr, nil
}

// CreateProblem inserts a catalog entry
func (p *Postgres) CreateProblem(ctx context.Context, title, difficulty, content string) (Problem, error) {
	if title == "" {
		return Problem{}, errors.New("title required")
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO problems (title, difficulty, content)
		VALUES ($1, $2, $3)
		RETURNING id, title, difficulty, content, created_at
	`, title, difficulty, content)

	var pr Problem
	if err := row.Scan(&pr.ID, &pr.Title, &pr.Difficulty, &pr.Content, &pr.CreatedAt); err != nil {
		return Problem{}, err
	}
	p.log.Info("problem.created", "id", pr.ID, "title", pr.Title)
	return pr, nil
}
