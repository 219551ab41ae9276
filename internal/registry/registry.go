// Package registry tracks ephemeral, UI-facing task status per generation
// request, independent of the persisted song store.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/musicmotivate/api/internal/model"
)

// Listener receives every status transition for a subscribed task.
type Listener func(model.TaskState)

// TaskRegistry is an explicitly owned in-memory status registry. Entries
// move waiting -> processing -> completed|failed and are dropped wholesale
// after the TTL regardless of state, which bounds growth from abandoned
// tasks. Expiry does not cancel an in-flight completion waiter; a waiter
// that outlives its entry has its late updates silently dropped.
type TaskRegistry struct {
	mu        sync.RWMutex
	tasks     map[string]model.TaskState
	listeners map[string]Listener
	timers    map[string]*time.Timer
	ttl       time.Duration
}

// New creates a registry whose entries expire after ttl.
func New(ttl time.Duration) *TaskRegistry {
	return &TaskRegistry{
		tasks:     make(map[string]model.TaskState),
		listeners: make(map[string]Listener),
		timers:    make(map[string]*time.Timer),
		ttl:       ttl,
	}
}

// Register creates a waiting entry for a task id and arms its expiry timer.
// Registering an existing id resets it to waiting.
func (r *TaskRegistry) Register(taskID string) {
	state := model.TaskState{
		TaskID:      taskID,
		Status:      model.TaskStatusWaiting,
		Message:     "Task registered, waiting for completion",
		LastUpdated: time.Now(),
	}

	r.mu.Lock()
	r.tasks[taskID] = state
	if timer, ok := r.timers[taskID]; ok {
		timer.Stop()
	}
	r.timers[taskID] = time.AfterFunc(r.ttl, func() { r.expire(taskID) })
	listener := r.listeners[taskID]
	r.mu.Unlock()

	if listener != nil {
		listener(state)
	}
}

// UpdateStatus transitions an entry and notifies its listener. Updates for
// unknown ids are dropped, as are updates to terminal entries: once a task
// is completed or failed its state is frozen until expiry.
func (r *TaskRegistry) UpdateStatus(taskID string, status model.TaskStatus, message string) {
	r.mu.Lock()
	state, ok := r.tasks[taskID]
	if !ok || state.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	state.Status = status
	state.Message = message
	state.LastUpdated = time.Now()
	r.tasks[taskID] = state
	listener := r.listeners[taskID]
	r.mu.Unlock()

	if listener != nil {
		listener(state)
	}
}

// Get returns a copy of the entry for a task id, or nil if absent.
func (r *TaskRegistry) Get(taskID string) *model.TaskState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if state, ok := r.tasks[taskID]; ok {
		return &state
	}
	return nil
}

// Subscribe registers the single listener for a task id, replacing any
// previous one, and immediately delivers the current state if known.
func (r *TaskRegistry) Subscribe(taskID string, listener Listener) {
	r.mu.Lock()
	r.listeners[taskID] = listener
	state, ok := r.tasks[taskID]
	r.mu.Unlock()

	if ok {
		listener(state)
	}
}

// Unsubscribe removes the listener for a task id.
func (r *TaskRegistry) Unsubscribe(taskID string) {
	r.mu.Lock()
	delete(r.listeners, taskID)
	r.mu.Unlock()
}

// MarkProcessing records that polling has started for a task.
func (r *TaskRegistry) MarkProcessing(taskID string) {
	r.UpdateStatus(taskID, model.TaskStatusProcessing, "Polling for song completion")
}

// MarkCompleted records a successful completion with the resolved song count.
func (r *TaskRegistry) MarkCompleted(taskID string, songCount int) {
	msg := fmt.Sprintf("%d song(s) generated and stored locally", songCount)
	r.UpdateStatus(taskID, model.TaskStatusCompleted, msg)
}

// MarkFailed records a failure with a human-readable reason.
func (r *TaskRegistry) MarkFailed(taskID string, reason string) {
	r.UpdateStatus(taskID, model.TaskStatusFailed, "Task failed: "+reason)
}

// Shutdown stops all expiry timers and clears the registry.
func (r *TaskRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
	r.tasks = make(map[string]model.TaskState)
	r.listeners = make(map[string]Listener)
}

func (r *TaskRegistry) expire(taskID string) {
	r.mu.Lock()
	delete(r.tasks, taskID)
	delete(r.listeners, taskID)
	delete(r.timers, taskID)
	r.mu.Unlock()
}
