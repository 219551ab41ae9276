package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/musicmotivate/api/internal/client"
	"github.com/musicmotivate/api/internal/model"
	"github.com/musicmotivate/api/internal/registry"
	"github.com/musicmotivate/api/internal/store"
)

const (
	// TaskTypeCompletion is the asynq task that polls for webhook completion.
	TaskTypeCompletion = "completion:wait"

	// QueueCompletion is the asynq queue for completion waiters.
	QueueCompletion = "completion"
)

// ErrProviderRejected is returned when the generation start call fails or
// the provider answers with a non-accepted code.
var ErrProviderRejected = errors.New("provider rejected generation request")

// TaskEnqueuer abstracts asynq task submission.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// CompletionTaskPayload is the asynq payload for a completion waiter.
type CompletionTaskPayload struct {
	TaskID      string `json:"taskId"`
	MaxAttempts int    `json:"maxAttempts"`
}

// NewCompletionTask builds the asynq task for one submission.
func NewCompletionTask(taskID string, maxAttempts int) (*asynq.Task, error) {
	data, err := json.Marshal(CompletionTaskPayload{TaskID: taskID, MaxAttempts: maxAttempts})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCompletion, data), nil
}

// GenerationService orchestrates song submission: it creates the task id,
// pre-creates the pending job record, calls the provider and hands the task
// to the completion worker.
type GenerationService struct {
	store       *store.SongStore
	registry    *registry.TaskRegistry
	suno        client.MusicGenerator
	enqueuer    TaskEnqueuer
	callbackURL string
	maxAttempts int
}

func NewGenerationService(
	songStore *store.SongStore,
	taskRegistry *registry.TaskRegistry,
	suno client.MusicGenerator,
	enqueuer TaskEnqueuer,
	callbackURL string,
	maxAttempts int,
) *GenerationService {
	return &GenerationService{
		store:       songStore,
		registry:    taskRegistry,
		suno:        suno,
		enqueuer:    enqueuer,
		callbackURL: callbackURL,
		maxAttempts: maxAttempts,
	}
}

// Submit starts a generation and returns the client-generated task id.
//
// The pending job record and its task mapping are written BEFORE the
// provider call, so a webhook that arrives while the start call is still in
// flight can already be correlated. On provider rejection the pending rows
// are marked failed and no registry entry is created.
func (s *GenerationService) Submit(ctx context.Context, userID string, req *model.GenerateSongRequest) (string, error) {
	taskID := uuid.New().String()
	now := time.Now()

	title := req.Title
	if title == "" {
		title = "Untitled"
	}

	song := &model.Song{
		TaskID:    taskID,
		Title:     title,
		Prompt:    req.Prompt,
		Style:     req.Style,
		UserID:    userID,
		CreatedAt: now,
	}
	if err := s.store.CreatePending(ctx, song); err != nil {
		return "", fmt.Errorf("failed to create job record: %w", err)
	}

	mapping := &model.TaskMapping{
		TaskID:    taskID,
		Title:     title,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTaskMapping(ctx, mapping); err != nil {
		return "", fmt.Errorf("failed to create task mapping: %w", err)
	}

	genModel := req.Model
	if genModel == "" {
		genModel = model.SunoModelV45
	}

	genReq := &client.SunoGenerateRequest{
		Prompt:       req.Prompt,
		Style:        req.Style,
		Title:        markedTitle(title, taskID),
		CustomMode:   true,
		Instrumental: req.Instrumental,
		Model:        genModel,
		CallBackURL:  s.callbackURL,
		NegativeTags: req.NegativeTags,
	}

	resp, err := s.suno.GenerateSongs(ctx, genReq)
	if err != nil {
		s.failPending(ctx, taskID)
		return "", fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	if resp.Code != 200 {
		s.failPending(ctx, taskID)
		return "", fmt.Errorf("%w: code %d: %s", ErrProviderRejected, resp.Code, resp.Msg)
	}

	s.registry.Register(taskID)

	task, err := NewCompletionTask(taskID, s.maxAttempts)
	if err != nil {
		s.registry.MarkFailed(taskID, err.Error())
		return "", fmt.Errorf("failed to create completion task: %w", err)
	}
	_, err = s.enqueuer.Enqueue(task,
		asynq.Queue(QueueCompletion),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Duration(s.maxAttempts+1)*10*time.Second),
	)
	if err != nil {
		s.registry.MarkFailed(taskID, err.Error())
		return "", fmt.Errorf("failed to enqueue completion task: %w", err)
	}

	return taskID, nil
}

func (s *GenerationService) failPending(ctx context.Context, taskID string) {
	if err := s.store.MarkTaskFailed(ctx, taskID); err != nil {
		// Leaving a pending row behind would later read as "in progress";
		// nothing more can be done here than record the problem.
		log.Printf("Failed to mark task %s failed: %v", taskID, err)
	}
}

// markedTitle embeds the task id in the provider-visible title so batch
// callbacks that omit task_id can still be correlated.
func markedTitle(title, taskID string) string {
	return fmt.Sprintf("%s [taskId: %s]", title, taskID)
}
