package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/recurrence"
	"github.com/pawhaven/pawhaven/internal/store"
)

// Scheduler periodically checks for care reminders that have come due and
// notifies their owners.
type Scheduler struct {
	mu        sync.RWMutex
	service   *Service
	push      *store.PushStore
	reminders *store.ReminderStore
	pets      *store.PetStore
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a notification scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, reminderStore *store.ReminderStore, petStore *store.PetStore) *Scheduler {
	return &Scheduler{
		service:   svc,
		push:      pushStore,
		reminders: reminderStore,
		pets:      petStore,
		interval:  60 * time.Second,
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
				s.tick()
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

func (s *Scheduler) tick() {
	userIDs, err := s.reminders.ListEnabledUserIDs()
	if err != nil {
		log.Printf("push scheduler: list users: %v", err)
		return
	}

	for _, uid := range userIDs {
		s.checkDueReminders(uid)
	}
}

// checkDueReminders notifies a user about reminders that are due today,
// not yet completed, and whose scheduled time of day has passed.
func (s *Scheduler) checkDueReminders(userID int64) {
	now := time.Now().UTC()
	today := recurrence.DateOnly(now)
	clock := now.Format("15:04")

	reminders, err := s.reminders.ListByUser(userID)
	if err != nil {
		log.Printf("push scheduler: list reminders: %v", err)
		return
	}

	var subs []model.PushSubscription

	for _, r := range reminders {
		if !r.Enabled || !recurrence.IsDue(r, today) {
			continue
		}
		if r.IsCompletedOn(today) {
			continue
		}
		if r.TimeOfDay > clock {
			continue
		}

		refID := fmt.Sprintf("reminder-%d-%s", r.ID, today.Format(model.DateFormat))
		sent, err := s.push.WasSent(model.NotifTypeReminderDue, refID)
		if err != nil {
			log.Printf("push scheduler: check sent: %v", err)
			continue
		}
		if sent {
			continue
		}

		enabled, _ := s.push.IsPreferenceEnabled(userID, model.NotifTypeReminderDue)
		if !enabled {
			s.push.RecordSent(model.NotifTypeReminderDue, refID)
			continue
		}

		if subs == nil {
			subs, err = s.push.ListByUser(userID)
			if err != nil {
				log.Printf("push scheduler: list subs: %v", err)
				return
			}
		}

		payload := Payload{
			Title: "Care Reminder",
			Body:  s.reminderBody(r),
			URL:   "/reminders",
			Tag:   fmt.Sprintf("reminder-%d", r.ID),
		}

		for i := range subs {
			if err := s.service.Send(&subs[i], payload); err != nil {
				if errors.Is(err, ErrExpired) {
					s.push.DeleteByEndpoint(subs[i].Endpoint)
				} else {
					log.Printf("push scheduler: send reminder: %v", err)
				}
			}
		}

		s.push.RecordSent(model.NotifTypeReminderDue, refID)
	}
}

func (s *Scheduler) reminderBody(r model.Reminder) string {
	pet, err := s.pets.GetByID(r.PetID)
	if err != nil || pet == nil {
		return fmt.Sprintf("%s is due at %s", r.Title, r.TimeOfDay)
	}
	return fmt.Sprintf("%s for %s is due at %s", r.Title, pet.Name, r.TimeOfDay)
}

// SendApplicationUpdate notifies an applicant that their adoption
// application was approved or rejected. Called from the application
// handler, not from the scheduler loop.
func (s *Scheduler) SendApplicationUpdate(userID int64, petName string, status model.ApplicationStatus) {
	enabled, _ := s.push.IsPreferenceEnabled(userID, model.NotifTypeApplicationUpdate)
	if !enabled {
		return
	}

	subs, err := s.push.ListByUser(userID)
	if err != nil {
		log.Printf("push: application update list subs: %v", err)
		return
	}

	payload := Payload{
		Title: "Adoption Application Update",
		Body:  fmt.Sprintf("Your application for %s was %s", petName, status),
		URL:   "/applications",
		Tag:   "application-update",
	}

	for i := range subs {
		if err := s.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(subs[i].Endpoint)
			} else {
				log.Printf("push: send application update: %v", err)
			}
		}
	}
}
