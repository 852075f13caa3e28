// Package events emits task lifecycle notifications to a message broker
// for downstream integrations. Publication is best-effort: failures are
// logged and never surfaced to the request that triggered them.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Marcel-mosha/task-manager/internal/mq"
	"github.com/Marcel-mosha/task-manager/types"
)

const (
	eventTaskCreated = "task.created"
	eventTaskUpdated = "task.updated"
	eventTaskDeleted = "task.deleted"
)

// TaskEvent is the wire form of a lifecycle notification.
type TaskEvent struct {
	Event      string    `json:"event"`
	TaskID     int       `json:"task_id"`
	UserID     int       `json:"user_id"`
	Completed  *bool     `json:"completed,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher forwards task lifecycle events to an mq backend.
type Publisher struct {
	mq    mq.Publisher
	topic string
}

func NewPublisher(publisher mq.Publisher, topic string) *Publisher {
	return &Publisher{mq: publisher, topic: topic}
}

func (p *Publisher) TaskCreated(ctx context.Context, task types.Task) {
	completed := task.Completed
	p.publish(ctx, TaskEvent{
		Event:     eventTaskCreated,
		TaskID:    task.ID,
		UserID:    task.UserID,
		Completed: &completed,
	})
}

func (p *Publisher) TaskUpdated(ctx context.Context, task types.Task) {
	completed := task.Completed
	p.publish(ctx, TaskEvent{
		Event:     eventTaskUpdated,
		TaskID:    task.ID,
		UserID:    task.UserID,
		Completed: &completed,
	})
}

func (p *Publisher) TaskDeleted(ctx context.Context, userID, taskID int) {
	p.publish(ctx, TaskEvent{
		Event:  eventTaskDeleted,
		TaskID: taskID,
		UserID: userID,
	})
}

func (p *Publisher) publish(ctx context.Context, event TaskEvent) {
	event.OccurredAt = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s: %v", event.Event, err)
		return
	}
	attrs := map[string]string{"event": event.Event}
	if _, err := p.mq.Publish(ctx, p.topic, data, attrs); err != nil {
		log.Printf("events: publish %s: %v", event.Event, err)
	}
}
