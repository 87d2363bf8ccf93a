// File: internal/jobs/booking_reminder.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/config"
	"motormate_backend/internal/notification"
)

// BookingReminderJob writes reminder notifications for next-day appointments.
type BookingReminderJob struct {
	bookings      booking.Repository
	notifications *notification.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewBookingReminderJob creates a new BookingReminderJob.
func NewBookingReminderJob(
	bookings booking.Repository,
	notifications *notification.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *BookingReminderJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &BookingReminderJob{
		bookings:      bookings,
		notifications: notifications,
		logger:        logger.Named("BookingReminderJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *BookingReminderJob) SetupAndStart() error {
	jobSpec := j.cfg.BookingReminderJobSchedule // e.g., "@daily", "0 7 * * *"
	if jobSpec == "" {
		j.logger.Warn("Booking reminder job schedule not defined (BOOKING_REMINDER_JOB_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule booking reminder job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Booking reminder job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob reminds customers about pending and confirmed bookings scheduled for
// tomorrow (UTC day boundaries).
func (j *BookingReminderJob) runJob() {
	j.logger.Info("Starting booking reminder job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	upcoming, err := j.bookings.FindScheduledBetween(ctx, from, to, []booking.Status{
		booking.StatusPending,
		booking.StatusConfirmed,
	})
	if err != nil {
		j.logger.Error("Booking reminder job run failed", zap.Error(err))
		return
	}

	for i := range upcoming {
		j.notifications.Remind(ctx, &upcoming[i])
	}
	j.logger.Info("Booking reminder job run completed", zap.Int("bookings_reminded", len(upcoming)))
}

// Stop gracefully stops the cron scheduler.
func (j *BookingReminderJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping booking reminder job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Booking reminder job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Booking reminder job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
