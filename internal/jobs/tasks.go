// Package jobs trabajos en segundo plano sobre asynq (Redis): barrido periódico de
// suscripciones pro expiradas.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola de los trabajos periódicos.
	QueueDefault = "default"
	// TaskExpirySweep tipo de tarea del barrido de expiración.
	TaskExpirySweep = "subscription:expiry_sweep"
)

// ExpirySweepPayload parámetros del barrido. Limit <= 0 procesa todas las empresas.
type ExpirySweepPayload struct {
	Limit int `json:"limit,omitempty"`
}

// NewExpirySweepTask construye la tarea del barrido.
func NewExpirySweepTask(payload ExpirySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: payload del barrido: %w", err)
	}
	return asynq.NewTask(TaskExpirySweep, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// Client encola tareas desde fuera del worker.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueExpirySweep encola un barrido inmediato.
func (c *Client) EnqueueExpirySweep(ctx context.Context, payload ExpirySweepPayload) (*asynq.TaskInfo, error) {
	task, err := NewExpirySweepTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
