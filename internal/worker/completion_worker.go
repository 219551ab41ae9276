package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/registry"
	"github.com/musicmotivate/api/internal/service"
)

// CompletionWaiter polls the song store for a task's terminal rows.
type CompletionWaiter interface {
	WaitForCompletion(ctx context.Context, taskID string, maxAttempts int) ([]model.SongResult, error)
}

// CompletionWorker runs one completion waiter per submitted task and keeps
// the task registry in sync with the outcome.
type CompletionWorker struct {
	completion CompletionWaiter
	registry   *registry.TaskRegistry
}

func NewCompletionWorker(completion CompletionWaiter, taskRegistry *registry.TaskRegistry) *CompletionWorker {
	return &CompletionWorker{
		completion: completion,
		registry:   taskRegistry,
	}
}

// ProcessTask handles one completion:wait task. The registry is marked
// processing before the wait starts and completed/failed when it resolves;
// if the registry entry already expired these updates are dropped silently.
func (w *CompletionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.CompletionTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal completion payload: %w", err)
	}

	log.Printf("Waiting for completion of task %s", payload.TaskID)
	w.registry.MarkProcessing(payload.TaskID)

	songs, err := w.completion.WaitForCompletion(ctx, payload.TaskID, payload.MaxAttempts)
	if err != nil {
		w.registry.MarkFailed(payload.TaskID, err.Error())
		return err
	}

	w.registry.MarkCompleted(payload.TaskID, len(songs))
	log.Printf("Task %s completed with %d song(s)", payload.TaskID, len(songs))
	return nil
}
