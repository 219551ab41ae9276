package model

// WebSocket message types
type WSMessageType string

const (
	WSMessageTypeStatus WSMessageType = "status"
	WSMessageTypeError  WSMessageType = "error"
)

// WSStatusMessage pushes a task status transition to subscribed clients.
type WSStatusMessage struct {
	Type WSMessageType `json:"type"`
	Task TaskState     `json:"task"`
}

// WSErrorMessage reports a push-channel error for a task.
type WSErrorMessage struct {
	Type   WSMessageType `json:"type"`
	TaskID string        `json:"taskId"`
	Error  WSError       `json:"error"`
}

// WSError carries a machine-readable code and human-readable message.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
