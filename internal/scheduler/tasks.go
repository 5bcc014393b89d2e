// Package scheduler enqueues and processes delayed qualification work via
// asynq: re-engagement nudges for stalled conversations and the abandoned
// session sweep.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReEngagement = "qualification.reengagement"

const TaskAbandonedSweep = "qualification.abandoned_sweep"

type ReEngagementPayload struct {
	TenantID  string `json:"tenantId"`
	SessionID string `json:"sessionId"`
	Step      string `json:"step"`
}

func NewReEngagementTask(payload ReEngagementPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReEngagement, data), nil
}

func ParseReEngagementPayload(task *asynq.Task) (ReEngagementPayload, error) {
	var payload ReEngagementPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReEngagementPayload{}, err
	}
	return payload, nil
}

func NewAbandonedSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAbandonedSweep, nil)
}
