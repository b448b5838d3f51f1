package store

import (
	"testing"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

func TestTaskCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	task, err := ts.Create(CreateTaskParams{
		HouseholdID: household.ID,
		Title:       "Passer l'aspirateur",
		Type:        model.TaskFlexible,
		CreatedBy:   member.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if !task.IsActive {
		t.Error("new task should be active")
	}
	if task.IsCompleted {
		t.Error("new task should not be completed")
	}
	if task.DueDate != nil || task.ShowBeforeDays != nil {
		t.Error("flexible task should carry no scheduling fields")
	}
}

func TestTaskCreateOneTime(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	show := 3
	estimated := 45
	task, err := ts.Create(CreateTaskParams{
		HouseholdID:       household.ID,
		Title:             "Prendre rendez-vous dentiste",
		Type:              model.TaskOneTime,
		DueDate:           &due,
		ShowBeforeDays:    &show,
		EstimatedDuration: &estimated,
		CreatedBy:         member.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("due_date = %v, want %v", task.DueDate, due)
	}
	if task.ShowBeforeDays == nil || *task.ShowBeforeDays != 3 {
		t.Errorf("show_before_days = %v, want 3", task.ShowBeforeDays)
	}
	if task.EstimatedDuration == nil || *task.EstimatedDuration != 45 {
		t.Errorf("estimated_duration = %v, want 45", task.EstimatedDuration)
	}
}

func TestTaskGetMissing(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)

	task, err := ts.GetByID(404)
	if err != nil {
		t.Fatalf("get missing task: %v", err)
	}
	if task != nil {
		t.Error("expected nil for unknown task")
	}
}

func TestTaskListActiveExcludesDeleted(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	keep, err := ts.Create(CreateTaskParams{HouseholdID: household.ID, Title: "Vaisselle", Type: model.TaskFlexible, CreatedBy: member.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	gone, err := ts.Create(CreateTaskParams{HouseholdID: household.ID, Title: "Lessive", Type: model.TaskFlexible, CreatedBy: member.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := ts.SoftDelete(gone.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	tasks, err := ts.ListActiveByHousehold(household.ID)
	if err != nil {
		t.Fatalf("list active tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep.ID {
		t.Errorf("active tasks = %v, want only %d", tasks, keep.ID)
	}

	// History survives the soft delete.
	deleted, err := ts.GetByID(gone.ID)
	if err != nil {
		t.Fatalf("get deleted task: %v", err)
	}
	if deleted == nil || deleted.IsActive {
		t.Errorf("soft-deleted task should still exist inactive, got %+v", deleted)
	}
}

func TestTaskPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	show := 5
	task, err := ts.Create(CreateTaskParams{
		HouseholdID:    household.ID,
		Title:          "Déclaration d'impôts",
		Type:           model.TaskOneTime,
		DueDate:        &due,
		ShowBeforeDays: &show,
		CreatedBy:      member.ID,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	title := "Déclaration de revenus"
	updated, err := ts.Update(task.ID, &title, nil, nil, nil)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Error("due date should survive a patch that omits it")
	}
	if updated.ShowBeforeDays == nil || *updated.ShowBeforeDays != 5 {
		t.Error("show_before_days should survive a patch that omits it")
	}
}

func TestTaskUpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)

	title := "Fantôme"
	task, err := ts.Update(404, &title, nil, nil, nil)
	if err != nil {
		t.Fatalf("update missing task: %v", err)
	}
	if task != nil {
		t.Error("expected nil for unknown task")
	}
}

func TestTaskAssign(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	task, err := ts.Create(CreateTaskParams{HouseholdID: household.ID, Title: "Courses", Type: model.TaskFlexible, CreatedBy: member.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	assigned, err := ts.Assign(task.ID, member.ID)
	if err != nil {
		t.Fatalf("assign task: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != member.ID {
		t.Errorf("assigned_to = %v, want %d", assigned.AssignedTo, member.ID)
	}
}

func TestTaskCompletionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	_, household, member := seedHousehold(t, db)
	ts := NewTaskStore(db)

	task, err := ts.Create(CreateTaskParams{HouseholdID: household.ID, Title: "Changer l'ampoule", Type: model.TaskOneTime, CreatedBy: member.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if err := ts.MarkCompleted(task.ID, now); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	got, _ := ts.GetByID(task.ID)
	if !got.IsCompleted || got.CompletedAt == nil {
		t.Errorf("after complete: is_completed=%v completed_at=%v", got.IsCompleted, got.CompletedAt)
	}

	if err := ts.MarkNotCompleted(task.ID); err != nil {
		t.Fatalf("mark not completed: %v", err)
	}
	got, _ = ts.GetByID(task.ID)
	if got.IsCompleted || got.CompletedAt != nil {
		t.Errorf("after undo: is_completed=%v completed_at=%v", got.IsCompleted, got.CompletedAt)
	}
}
