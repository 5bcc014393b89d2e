package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "leadzap" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestScheduleReEngagement_EnqueueRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	cfg := testSchedulerConfig{redisURL: "redis://" + redis.Addr()}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	tenantID := uuid.New()
	sessionID := uuid.New()
	err = client.ScheduleReEngagement(context.Background(), tenantID, sessionID, "objetivo", 24*time.Hour)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redis.Addr()})
	defer func() {
		_ = inspector.Close()
	}()

	tasks, err := inspector.ListScheduledTasks("leadzap")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("scheduled tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskReEngagement {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskReEngagement)
	}

	payload, err := ParseReEngagementPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.TenantID != tenantID.String() || payload.SessionID != sessionID.String() {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Step != "objetivo" {
		t.Errorf("step = %q, want objetivo", payload.Step)
	}
}

func TestNewClient_RequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("client created without a redis url")
	}
}
