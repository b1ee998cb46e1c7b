package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"puja-booking-api/internal/services"
	"puja-booking-api/pkg/logger"
)

// Refresher reloads the catalog snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*services.RefreshResult, error)
}

// RefreshJob reloads the catalog on a cron schedule. Runs never overlap:
// a tick that fires while the previous refresh is still going is skipped.
type RefreshJob struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	log       logger.Logger
}

// NewRefreshJob schedules refresher with a standard five-field cron spec.
// An empty schedule creates a job that only refreshes via RunOnce.
func NewRefreshJob(schedule string, timeout time.Duration, refresher Refresher, log logger.Logger) (*RefreshJob, error) {
	log = log.WithFields(map[string]interface{}{"component": "refresh_job"})
	cl := cronLogger{log: log}

	j := &RefreshJob{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		refresher: refresher,
		timeout:   timeout,
		log:       log,
	}

	if schedule != "" {
		if _, err := j.cron.AddFunc(schedule, func() {
			_ = j.RunOnce(context.Background())
		}); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
		}
		log.Info("Catalog refresh scheduled", map[string]interface{}{"schedule": schedule})
	}
	return j, nil
}

// RunOnce performs a single refresh bounded by the job timeout.
func (j *RefreshJob) RunOnce(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	result, err := j.refresher.Refresh(ctx)
	if err != nil {
		j.log.Warn("[Cron] catalog refresh failed, keeping previous snapshot", map[string]interface{}{"error": err})
		return err
	}
	j.log.Debug("[Cron] catalog refreshed", map[string]interface{}{
		"version": result.Version,
		"records": result.Records,
	})
	return nil
}

func (j *RefreshJob) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for a running refresh to finish, or for ctx.
func (j *RefreshJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.log.Warn("Refresh job did not stop in time", nil)
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, kvToFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvToFields(keysAndValues)
	fields["error"] = err
	c.log.Error(msg, fields)
}

func kvToFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
