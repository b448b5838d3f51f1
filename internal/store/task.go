package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var taskType string
	var dueDate, completedAt sql.NullTime
	var showBeforeDays, estimatedDuration, assignedTo sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &taskType,
		&dueDate, &showBeforeDays, &t.IsActive, &t.IsCompleted, &completedAt,
		&estimatedDuration, &t.CreatedAt, &t.CreatedBy, &assignedTo,
	)
	if err != nil {
		return nil, err
	}

	t.Type = model.TaskType(taskType)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if showBeforeDays.Valid {
		v := int(showBeforeDays.Int64)
		t.ShowBeforeDays = &v
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if estimatedDuration.Valid {
		v := int(estimatedDuration.Int64)
		t.EstimatedDuration = &v
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	return &t, nil
}

const taskCols = `id, household_id, title, description, type, due_date, show_before_days, is_active, is_completed, completed_at, estimated_duration, created_at, created_by, assigned_to`

type CreateTaskParams struct {
	HouseholdID       int64
	Title             string
	Description       string
	Type              model.TaskType
	DueDate           *time.Time
	ShowBeforeDays    *int
	EstimatedDuration *int
	CreatedBy         int64
}

func (s *TaskStore) Create(p CreateTaskParams) (*model.Task, error) {
	var due sql.NullTime
	if p.DueDate != nil {
		due = sql.NullTime{Time: p.DueDate.UTC(), Valid: true}
	}
	var show, estimated sql.NullInt64
	if p.ShowBeforeDays != nil {
		show = sql.NullInt64{Int64: int64(*p.ShowBeforeDays), Valid: true}
	}
	if p.EstimatedDuration != nil {
		estimated = sql.NullInt64{Int64: int64(*p.EstimatedDuration), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, type, due_date, show_before_days, estimated_duration, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.HouseholdID, p.Title, p.Description, string(p.Type), due, show, estimated, p.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListActiveByHousehold returns every non-deleted task of a household.
func (s *TaskStore) ListActiveByHousehold(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? AND is_active = 1 ORDER BY created_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update patches title, description and scheduling; nil fields keep
// their current value.
func (s *TaskStore) Update(id int64, title, description *string, dueDate *time.Time, showBeforeDays *int) (*model.Task, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	newTitle := existing.Title
	if title != nil {
		newTitle = *title
	}
	newDescription := existing.Description
	if description != nil {
		newDescription = *description
	}
	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: dueDate.UTC(), Valid: true}
	} else if existing.DueDate != nil {
		due = sql.NullTime{Time: existing.DueDate.UTC(), Valid: true}
	}
	var show sql.NullInt64
	if showBeforeDays != nil {
		show = sql.NullInt64{Int64: int64(*showBeforeDays), Valid: true}
	} else if existing.ShowBeforeDays != nil {
		show = sql.NullInt64{Int64: int64(*existing.ShowBeforeDays), Valid: true}
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, show_before_days = ? WHERE id = ?`,
		newTitle, newDescription, due, show, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// SoftDelete marks the task inactive; the row stays for history.
func (s *TaskStore) SoftDelete(id int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) Assign(id, memberID int64) (*model.Task, error) {
	_, err := s.db.Exec(`UPDATE tasks SET assigned_to = ? WHERE id = ?`, memberID, id)
	if err != nil {
		return nil, fmt.Errorf("assign task: %w", err)
	}
	return s.GetByID(id)
}

// MarkCompleted flips a one-time task to completed.
func (s *TaskStore) MarkCompleted(id int64, completedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET is_completed = 1, completed_at = ? WHERE id = ?`,
		completedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark task completed: %w", err)
	}
	return nil
}

// MarkNotCompleted reopens a one-time task after an undo.
func (s *TaskStore) MarkNotCompleted(id int64) error {
	_, err := s.db.Exec(
		`UPDATE tasks SET is_completed = 0, completed_at = NULL WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark task not completed: %w", err)
	}
	return nil
}
