package task

import (
	"testing"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

func TestPickerBucketsByMemberCount(t *testing.T) {
	dishes := model.Task{ID: 1, Title: "Vaisselle", Type: model.TaskFlexible, IsActive: true}
	laundry := model.Task{ID: 2, Title: "Lessive", Type: model.TaskFlexible, IsActive: true}

	// Member M completed dishes 3 times and laundry once.
	res := CategorizeForPicker(
		[]model.Task{dishes, laundry},
		nil,
		map[int64]int{1: 3, 2: 1},
		now,
	)

	if len(res.Frequent) != 1 || res.Frequent[0].ID != 1 {
		t.Fatalf("frequent = %v, want [dishes]", res.Frequent)
	}
	if len(res.CouldDo) != 1 || res.CouldDo[0].ID != 2 {
		t.Fatalf("could-do = %v, want [laundry]", res.CouldDo)
	}

	// Member N with no completions sees both tasks as could-do.
	res = CategorizeForPicker([]model.Task{dishes, laundry}, nil, nil, now)
	if len(res.Frequent) != 0 {
		t.Errorf("frequent for member N = %v, want empty", res.Frequent)
	}
	if len(res.CouldDo) != 2 {
		t.Errorf("could-do for member N has %d tasks, want 2", len(res.CouldDo))
	}
}

func TestPickerThresholdIsStrictlyMoreThanTwo(t *testing.T) {
	tk := model.Task{ID: 1, Type: model.TaskFlexible, IsActive: true}

	res := CategorizeForPicker([]model.Task{tk}, nil, map[int64]int{1: 2}, now)
	if len(res.CouldDo) != 1 {
		t.Error("2 completions should still be could-do")
	}

	res = CategorizeForPicker([]model.Task{tk}, nil, map[int64]int{1: 3}, now)
	if len(res.Frequent) != 1 {
		t.Error("3 completions should be frequent")
	}
}

func TestPickerFlexibleListedEvenIfDoneToday(t *testing.T) {
	tk := model.Task{ID: 1, Type: model.TaskFlexible, IsActive: true}

	res := CategorizeForPicker([]model.Task{tk}, map[int64]bool{1: true}, nil, now)
	if len(res.CouldDo) != 1 {
		t.Error("flexible task completed today should still appear in the picker")
	}
}

func TestPickerOneTimeRules(t *testing.T) {
	due1 := now.Add(3 * 24 * time.Hour)
	due2 := now.Add(24 * time.Hour)
	farDue := now.Add(30 * 24 * time.Hour)

	withDue1 := model.Task{ID: 1, Type: model.TaskOneTime, IsActive: true, DueDate: &due1}
	withDue2 := model.Task{ID: 2, Type: model.TaskOneTime, IsActive: true, DueDate: &due2}
	noDue := model.Task{ID: 3, Type: model.TaskOneTime, IsActive: true}
	notYetVisible := model.Task{ID: 4, Type: model.TaskOneTime, IsActive: true, DueDate: &farDue}

	res := CategorizeForPicker([]model.Task{withDue1, withDue2, noDue, notYetVisible}, nil, nil, now)

	// Sorted by due date ascending.
	if len(res.ToDo) != 2 {
		t.Fatalf("to-do has %d tasks, want 2", len(res.ToDo))
	}
	if res.ToDo[0].ID != 2 || res.ToDo[1].ID != 1 {
		t.Errorf("to-do order = [%d %d], want [2 1]", res.ToDo[0].ID, res.ToDo[1].ID)
	}

	// A one-time task without a due date lands in no bucket.
	total := len(res.ToDo) + len(res.Frequent) + len(res.CouldDo)
	if total != 2 {
		t.Errorf("one-time task without due date leaked into a bucket (total %d)", total)
	}
}

func TestPickerFrequentSortedByCountDescending(t *testing.T) {
	a := model.Task{ID: 1, Type: model.TaskFlexible, IsActive: true}
	b := model.Task{ID: 2, Type: model.TaskFlexible, IsActive: true}
	c := model.Task{ID: 3, Type: model.TaskFlexible, IsActive: true}

	res := CategorizeForPicker(
		[]model.Task{a, b, c},
		nil,
		map[int64]int{1: 4, 2: 9, 3: 4},
		now,
	)

	if len(res.Frequent) != 3 {
		t.Fatalf("frequent has %d tasks, want 3", len(res.Frequent))
	}
	if res.Frequent[0].ID != 2 {
		t.Errorf("most completed task should come first, got %d", res.Frequent[0].ID)
	}
	// Tie between a and c keeps input order (stable sort).
	if res.Frequent[1].ID != 1 || res.Frequent[2].ID != 3 {
		t.Errorf("tie should keep input order, got [%d %d]", res.Frequent[1].ID, res.Frequent[2].ID)
	}
}

func TestPickerIgnoresInactiveOneTime(t *testing.T) {
	due := now.Add(24 * time.Hour)
	tk := model.Task{ID: 1, Type: model.TaskOneTime, IsActive: false, DueDate: &due}

	res := CategorizeForPicker([]model.Task{tk}, nil, nil, now)
	if len(res.ToDo) != 0 {
		t.Error("inactive one-time task should not appear")
	}
}
