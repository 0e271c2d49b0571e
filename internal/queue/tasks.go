package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSessionPurge 闲置会话清理任务
	TaskSessionPurge = constants.TaskSessionPurge
)

// SessionPurgePayload 闲置会话清理任务载荷
type SessionPurgePayload struct {
	SessionID string `json:"session_id"`
	LastSeen  int64  `json:"last_seen"` // 入队时的最后访问时间（unix 秒）
}

// NewSessionPurgeTask 创建闲置会话清理任务
func NewSessionPurgeTask(payload SessionPurgePayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.SessionID) == "" {
		return nil, errors.New("session id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, body, asynq.MaxRetry(constants.TaskPurgeMaxRetry)), nil
}

// ParseSessionPurgePayload 解析任务载荷
func ParseSessionPurgePayload(task *asynq.Task) (SessionPurgePayload, error) {
	var payload SessionPurgePayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
