package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soluo/mental-load/internal/metrics"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/task"
)

// Scheduler periodically scans households for overdue one-time tasks
// and reminds subscribed members. One reminder per task per day.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	tasks    *store.TaskStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}

	// remindedOn tracks the last calendar day a reminder went out per task.
	remindedOn map[int64]string
}

func NewScheduler(svc *Service, pushStore *store.PushStore, taskStore *store.TaskStore, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:    svc,
		push:       pushStore,
		tasks:      taskStore,
		metrics:    m,
		logger:     logger,
		interval:   time.Hour,
		remindedOn: make(map[int64]string),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	householdIDs, err := s.push.ListHouseholdIDs()
	if err != nil {
		s.logger.Error("list subscribed households", "error", err)
		return
	}

	for _, hid := range householdIDs {
		s.remindOverdue(hid, now)
	}
}

func (s *Scheduler) remindOverdue(householdID int64, now time.Time) {
	tasks, err := s.tasks.ListActiveByHousehold(householdID)
	if err != nil {
		s.logger.Error("list tasks", "household_id", householdID, "error", err)
		return
	}

	day := now.Format("2006-01-02")
	for _, t := range tasks {
		if !task.IsOverdue(t, now) {
			continue
		}
		if s.alreadyReminded(t.ID, day) {
			continue
		}

		subs, err := s.push.ListByHousehold(householdID)
		if err != nil {
			s.logger.Error("list subscriptions", "household_id", householdID, "error", err)
			return
		}

		payload := Payload{
			Title: "Tâche en retard",
			Body:  fmt.Sprintf("« %s » a dépassé son échéance", t.Title),
			URL:   "/tasks",
			Tag:   fmt.Sprintf("overdue-%d", t.ID),
		}

		for i := range subs {
			if err := s.service.Send(&subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					if err := s.push.DeleteByEndpoint(subs[i].Endpoint); err != nil {
						s.logger.Warn("remove expired subscription", "error", err)
					}
				} else {
					s.logger.Warn("send overdue reminder", "task_id", t.ID, "error", err)
				}
				continue
			}
			s.metrics.PushesSent.Inc()
		}

		s.markReminded(t.ID, day)
	}
}

func (s *Scheduler) alreadyReminded(taskID int64, day string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remindedOn[taskID] == day
}

func (s *Scheduler) markReminded(taskID int64, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Drop stale entries so the map does not grow with dead task ids.
	for id, d := range s.remindedOn {
		if d != day {
			delete(s.remindedOn, id)
		}
	}
	s.remindedOn[taskID] = day
}
