package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.TaskCompletion, error) {
	var c model.TaskCompletion
	var duration, daysLate sql.NullInt64
	var notes sql.NullString

	err := scanner.Scan(
		&c.ID, &c.TaskID, &c.HouseholdID, &c.CompletedBy, &c.CompletedAt,
		&c.ForDate, &duration, &notes, &c.WasLate, &daysLate,
	)
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		v := int(duration.Int64)
		c.Duration = &v
	}
	if notes.Valid {
		c.Notes = &notes.String
	}
	if daysLate.Valid {
		v := int(daysLate.Int64)
		c.DaysLate = &v
	}
	return &c, nil
}

const completionCols = `id, task_id, household_id, completed_by, completed_at, for_date, duration, notes, was_late, days_late`

type CreateCompletionParams struct {
	TaskID      int64
	HouseholdID int64
	CompletedBy int64
	CompletedAt time.Time
	ForDate     time.Time
	Duration    *int
	Notes       *string
	WasLate     bool
	DaysLate    *int
}

func (s *CompletionStore) Create(p CreateCompletionParams) (*model.TaskCompletion, error) {
	var duration, daysLate sql.NullInt64
	if p.Duration != nil {
		duration = sql.NullInt64{Int64: int64(*p.Duration), Valid: true}
	}
	if p.DaysLate != nil {
		daysLate = sql.NullInt64{Int64: int64(*p.DaysLate), Valid: true}
	}
	var notes sql.NullString
	if p.Notes != nil {
		notes = sql.NullString{String: *p.Notes, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO task_completions (task_id, household_id, completed_by, completed_at, for_date, duration, notes, was_late, days_late)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TaskID, p.HouseholdID, p.CompletedBy, p.CompletedAt.UTC(), p.ForDate.UTC(), duration, notes, p.WasLate, daysLate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CompletionStore) GetByID(id int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM task_completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *CompletionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

// UpdateDetails sets duration and notes; nil clears the field, matching
// the edit form where both inputs are submitted together.
func (s *CompletionStore) UpdateDetails(id int64, duration *int, notes *string) (*model.TaskCompletion, error) {
	var d sql.NullInt64
	if duration != nil {
		d = sql.NullInt64{Int64: int64(*duration), Valid: true}
	}
	var n sql.NullString
	if notes != nil {
		n = sql.NullString{String: *notes, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE task_completions SET duration = ?, notes = ? WHERE id = ?`,
		d, n, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update completion: %w", err)
	}
	return s.GetByID(id)
}

// ListByHouseholdSince returns a household's completions at or after
// the given instant, newest first.
func (s *CompletionStore) ListByHouseholdSince(householdID int64, since time.Time) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions WHERE household_id = ? AND completed_at >= ? ORDER BY completed_at DESC`,
		householdID, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completions since: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListRecentByHousehold returns the household's most recent completions.
func (s *CompletionStore) ListRecentByHousehold(householdID int64, limit int) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions WHERE household_id = ? ORDER BY completed_at DESC LIMIT ?`,
		householdID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListByTask returns a task's completions, newest first.
func (s *CompletionStore) ListByTask(taskID int64, limit int) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions WHERE task_id = ? ORDER BY completed_at DESC LIMIT ?`,
		taskID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by task: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// CountByTaskSince counts a task's completions at or after the given instant.
func (s *CompletionStore) CountByTaskSince(taskID int64, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE task_id = ? AND completed_at >= ?`,
		taskID, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions by task: %w", err)
	}
	return count, nil
}

// ListByMember returns every completion ever recorded by a member.
func (s *CompletionStore) ListByMember(memberID int64) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions WHERE completed_by = ? ORDER BY completed_at DESC`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by member: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// ListByMemberRange returns a member's completions within [start, end].
func (s *CompletionStore) ListByMemberRange(memberID int64, start, end time.Time) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions
		 WHERE completed_by = ? AND completed_at >= ? AND completed_at <= ?
		 ORDER BY completed_at ASC`,
		memberID, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completions by member range: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

// FirstForTaskSince returns the oldest completion of a task at or after
// the given instant, or nil if there is none. Used by the same-day undo.
func (s *CompletionStore) FirstForTaskSince(taskID int64, since time.Time) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM task_completions
		 WHERE task_id = ? AND completed_at >= ? ORDER BY completed_at ASC LIMIT 1`,
		taskID, since.UTC(),
	)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first completion since: %w", err)
	}
	return c, nil
}

// LastForTask returns the most recent completion of a task, or nil.
func (s *CompletionStore) LastForTask(taskID int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM task_completions WHERE task_id = ? ORDER BY completed_at DESC LIMIT 1`,
		taskID,
	)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completion: %w", err)
	}
	return c, nil
}

func collectCompletions(rows *sql.Rows) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}
