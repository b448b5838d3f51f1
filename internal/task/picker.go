package task

import (
	"sort"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

// frequentThreshold: a flexible task a member has completed more than
// this many times overall counts as one of their frequent tasks.
const frequentThreshold = 2

// PickerResult buckets a household's active tasks for the "pick
// something to do" view. ToDo holds one-time tasks with a due date that
// are currently visible, sorted by due date. Frequent and CouldDo split
// flexible tasks on the viewing member's all-time completion count.
// CompletionCounts carries that member's count per task for display.
type PickerResult struct {
	ToDo             []model.Task  `json:"toDo"`
	Frequent         []model.Task  `json:"frequentTasks"`
	CouldDo          []model.Task  `json:"otherTasks"`
	CompletionCounts map[int64]int `json:"completionCounts"`
}

// CategorizeForPicker implements the picker buckets for one member.
// completedToday holds the ids of tasks that member completed today;
// completionCounts holds their all-time completion count per task.
//
// Two deliberate quirks carried over from the product:
//   - one-time tasks without a due date land in no bucket at all;
//   - flexible tasks stay listed even when already completed today,
//     unlike the dashboard, because this view serves task selection for
//     any member rather than "what's left for me".
func CategorizeForPicker(tasks []model.Task, completedToday map[int64]bool, completionCounts map[int64]int, now time.Time) PickerResult {
	res := PickerResult{
		ToDo:             []model.Task{},
		Frequent:         []model.Task{},
		CouldDo:          []model.Task{},
		CompletionCounts: completionCounts,
	}
	if res.CompletionCounts == nil {
		res.CompletionCounts = map[int64]int{}
	}

	for _, t := range tasks {
		if !t.IsActive {
			continue
		}
		switch t.Type {
		case model.TaskOneTime:
			if !IsVisibleToday(t, completedToday[t.ID], now) {
				continue
			}
			if t.DueDate != nil {
				res.ToDo = append(res.ToDo, t)
			}
		case model.TaskFlexible:
			if completionCounts[t.ID] > frequentThreshold {
				res.Frequent = append(res.Frequent, t)
			} else {
				res.CouldDo = append(res.CouldDo, t)
			}
		}
	}

	sort.SliceStable(res.ToDo, func(i, j int) bool {
		return res.ToDo[i].DueDate.Before(*res.ToDo[j].DueDate)
	})

	sort.SliceStable(res.Frequent, func(i, j int) bool {
		return completionCounts[res.Frequent[i].ID] > completionCounts[res.Frequent[j].ID]
	})

	return res
}
