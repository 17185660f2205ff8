package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/internal/ratelimit"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	InvoiceSvc  invoicedomain.Service
	ReminderSvc reminderdomain.Service
	Clock       clock.Clock
	Config      Config            `optional:"true"`
	Locker      *ratelimit.Locker `optional:"true"`
}

// Scheduler runs the periodic jobs: flipping sent invoices to overdue and
// sending payment reminders, per organization.
type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	invoiceSvc  invoicedomain.Service
	reminderSvc reminderdomain.Service
	locker      *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.InvoiceSvc == nil || p.ReminderSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		invoiceSvc:  p.InvoiceSvc,
		reminderSvc: p.ReminderSvc,
		locker:      p.Locker,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	// With a locker in play only one replica runs the job per interval.
	if s.locker != nil {
		key := "faktura:job:" + name
		token, acquired, err := s.locker.TryLock(ctx, key, s.cfg.JobTimeout)
		if err != nil {
			s.log.Warn("job lease unavailable", zap.String("job", name), zap.Error(err))
		} else if !acquired {
			s.log.Info("job held by another replica", zap.String("job", name))
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("job lease release failed", zap.String("job", name), zap.Error(err))
				}
			}()
		}
	}

	obsmetrics.IncJobRun(name)
	err := fn(ctx)
	obsmetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	obsmetrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"check_overdue", s.CheckOverdueJob},
		{"reminders", s.RemindersJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs runs everything (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// CheckOverdueJob sweeps every org with sent invoices and flips the ones past
// their due date to overdue.
func (s *Scheduler) CheckOverdueJob(ctx context.Context) error {
	orgIDs, err := s.fetchInvoiceOrgIDs(ctx, invoicedomain.InvoiceStatusSent)
	if err != nil {
		return err
	}

	var jobErr error
	for _, orgID := range orgIDs {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		orgCtx := orgcontext.WithOrgID(ctx, int64(orgID))
		overdue, err := s.invoiceSvc.CheckOverdue(orgCtx)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.log.Error("overdue sweep failed",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
			continue
		}
		if len(overdue) > 0 {
			s.log.Info("invoices marked overdue",
				zap.String("org_id", orgID.String()),
				zap.Int("count", len(overdue)),
			)
		}
	}

	return jobErr
}

// RemindersJob runs the reminder batch for every org that has invoices in a
// reminder-eligible state. Orgs are processed independently.
func (s *Scheduler) RemindersJob(ctx context.Context) error {
	orgIDs, err := s.fetchInvoiceOrgIDs(ctx, invoicedomain.InvoiceStatusOverdue, invoicedomain.InvoiceStatusReminderSent)
	if err != nil {
		return err
	}

	var jobErr error
	for _, orgID := range orgIDs {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		orgCtx := orgcontext.WithOrgID(ctx, int64(orgID))
		result, err := s.reminderSvc.ProcessReminders(orgCtx)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.log.Error("reminder batch failed",
				zap.String("org_id", orgID.String()),
				zap.Error(err),
			)
			continue
		}
		if result.Disabled {
			continue
		}
		if result.Sent > 0 {
			obsmetrics.IncRemindersSent(orgID.String(), result.Sent)
		}
		s.log.Info("reminder batch finished",
			zap.String("org_id", orgID.String()),
			zap.Int("processed", result.Processed),
			zap.Int("sent", result.Sent),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", result.Errors),
		)
	}

	return jobErr
}

func (s *Scheduler) fetchInvoiceOrgIDs(ctx context.Context, statuses ...invoicedomain.InvoiceStatus) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("status IN ?", statuses).
		Distinct().
		Limit(s.cfg.BatchSize).
		Pluck("org_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
