package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadzap_backend/internal/qualification"
	"leadzap_backend/platform/config"
	"leadzap_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// abandonedAfter is how long a session may stay quiet before the sweep
// closes it.
const abandonedAfter = 72 * time.Hour

// sweepSchedule runs the abandoned session sweep nightly at 03:00.
const sweepSchedule = "0 3 * * *"

// Conversations is the slice of the qualification service the worker needs.
type Conversations interface {
	HandleReEngagement(ctx context.Context, tenantID, sessionID uuid.UUID, step qualification.Step) error
	SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error)
}

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	convos    Conversations
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, convos Conversations, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})
	if _, err := periodic.Register(sweepSchedule, NewAbandonedSweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register sweep schedule: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		convos:    convos,
		log:       log,
	}

	mux.HandleFunc(TaskReEngagement, w.handleReEngagement)
	mux.HandleFunc(TaskAbandonedSweep, w.handleAbandonedSweep)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleReEngagement(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseReEngagementPayload(task)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}
	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return err
	}

	return w.convos.HandleReEngagement(ctx, tenantID, sessionID, qualification.Step(payload.Step))
}

func (w *Worker) handleAbandonedSweep(ctx context.Context, _ *asynq.Task) error {
	closed, err := w.convos.SweepAbandoned(ctx, time.Now().Add(-abandonedAfter))
	if err != nil {
		return err
	}
	if closed > 0 {
		w.log.Info("abandoned sessions closed", "count", closed)
	}
	return nil
}
