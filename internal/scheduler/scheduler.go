// Package scheduler fans periodic work out across users: a daily insight
// job per user onto the queue, and a monthly emailed digest.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type Scheduler struct {
	storage *storage.SQLiteRepository
	queue   *amqp.Client
	budget  *services.BudgetService
	sender  *notify.Sender // nil disables digests
	cron    *cron.Cron
	logger  *log.Logger
}

func New(st *storage.SQLiteRepository, queue *amqp.Client, budget *services.BudgetService, sender *notify.Sender, logger *log.Logger) *Scheduler {
	return &Scheduler{
		storage: st,
		queue:   queue,
		budget:  budget,
		sender:  sender,
		cron:    cron.New(),
		logger:  logger.WithComponent(log.ComponentScheduler),
	}
}

// Start registers the cron entries and begins running them. insightSpec and
// digestSpec are standard five-field cron expressions.
func (s *Scheduler) Start(insightSpec, digestSpec string) error {
	if _, err := s.cron.AddFunc(insightSpec, s.runInsightBatch); err != nil {
		return fmt.Errorf("register insight schedule %q: %w", insightSpec, err)
	}

	if s.sender != nil {
		if _, err := s.cron.AddFunc(digestSpec, s.runDigestBatch); err != nil {
			return fmt.Errorf("register digest schedule %q: %w", digestSpec, err)
		}
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		"insight_schedule", insightSpec,
		"digest_schedule", digestSpec,
		"digests_enabled", s.sender != nil)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// runInsightBatch publishes one insight job per user. A failed publish is
// logged and the batch moves on.
func (s *Scheduler) runInsightBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users for insight batch", log.FieldError, err.Error())
		return
	}

	var published int
	for _, u := range users {
		if err := s.queue.PublishInsightJob(ctx, u.ID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish insight job",
				log.FieldUserID, u.ID,
				log.FieldError, err.Error())
			continue
		}
		published++
	}

	s.logger.InfoContext(ctx, "Insight batch published",
		"users", len(users),
		"published", published)
}

// runDigestBatch emails every user a summary of the previous month.
func (s *Scheduler) runDigestBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users for digest batch", log.FieldError, err.Error())
		return
	}

	// The digest covers the month that just closed.
	prev := time.Now().UTC().AddDate(0, -1, 0)
	var sent int
	for _, u := range users {
		if u.Email == "" {
			continue
		}

		summary, err := s.budget.Summary(ctx, u.ID, prev.Year(), int(prev.Month()))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to build digest summary",
				log.FieldUserID, u.ID,
				log.FieldError, err.Error())
			continue
		}
		trend, err := s.budget.Trends(ctx, u.ID, 3)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to build digest trend",
				log.FieldUserID, u.ID,
				log.FieldError, err.Error())
			continue
		}

		if err := s.sender.SendBudgetDigest(u.Email, u.Name, summary, trend); err != nil {
			// Already logged by the sender.
			continue
		}
		sent++
	}

	s.logger.InfoContext(ctx, "Digest batch finished",
		"users", len(users),
		"sent", sent)
}
