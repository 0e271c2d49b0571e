package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/provider"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/queue"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSessionPurge, c.handleSessionPurge)
}

func (c *Consumer) handleSessionPurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_session_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseSessionPurgePayload(task)
	if err != nil {
		logger.Warnw("worker_session_purge_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if c.Container == nil || c.SessionManager == nil {
		logger.Warnw("worker_session_purge_skip_manager_nil", "session_id", payload.SessionID)
		return nil
	}

	purged, err := c.SessionManager.Purge(ctx, payload.SessionID)
	if errors.Is(err, session.ErrInvalidSessionID) {
		logger.Debugw("worker_session_purge_skip_invalid_payload", "session_id", payload.SessionID)
		return nil
	}
	if err != nil {
		logger.Warnw("worker_session_purge_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	if !purged {
		// 入队后会话又被访问过，后续访问会重新安排清理
		logger.Debugw("worker_session_purge_skip_active", "session_id", payload.SessionID, "enqueued_last_seen", payload.LastSeen)
		return nil
	}
	logger.Infow("worker_session_purged", "session_id", payload.SessionID)
	return nil
}
