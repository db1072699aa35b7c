package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded successful submission. The portal backend remains
// the source of truth for justification state; the journal exists for the
// recent-activity view and audit.
type Entry struct {
	ID                string    `json:"id"`
	JustificationCode string    `json:"justification_code"`
	StudentCode       string    `json:"student_code"`
	AbsenceCodes      []string  `json:"absence_codes"`
	FileCount         int       `json:"file_count"`
	SubmittedAt       time.Time `json:"submitted_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// ErrUnavailable is returned when the journal has no database behind it.
var ErrUnavailable = errors.New("journal unavailable")

// Repository persists the submission journal in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a journal entry, filling defaults for id and timestamps.
func (r *Repository) Insert(ctx context.Context, e Entry) (Entry, error) {
	if r == nil || r.db == nil {
		return Entry{}, ErrUnavailable
	}
	if e.JustificationCode == "" {
		return Entry{}, errors.New("justification code required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO justification_submissions (id, justification_code, student_code, absence_codes, file_count, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, e.ID, e.JustificationCode, e.StudentCode, strings.Join(e.AbsenceCodes, ","), e.FileCount, e.SubmittedAt)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Recent returns the student's latest journal entries, newest first.
func (r *Repository) Recent(ctx context.Context, studentCode string, limit int) ([]Entry, error) {
	if r == nil || r.db == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, justification_code, student_code, absence_codes, file_count, submitted_at, created_at
		FROM justification_submissions
		WHERE student_code = $1
		ORDER BY submitted_at DESC
		LIMIT $2
	`, studentCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var codes string
		if err := rows.Scan(&e.ID, &e.JustificationCode, &e.StudentCode, &codes, &e.FileCount, &e.SubmittedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		if codes != "" {
			e.AbsenceCodes = strings.Split(codes, ",")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
