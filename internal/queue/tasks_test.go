package queue

import (
	"testing"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"

	"github.com/hibiken/asynq"
)

func TestSessionPurgeTaskRoundTrip(t *testing.T) {
	task, err := NewSessionPurgeTask(SessionPurgePayload{SessionID: "5f0c2a52-2d0e-4bb8-9d7c-7e1f0b2d4c11", LastSeen: 1700000000})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskSessionPurge {
		t.Fatalf("task type want %s got %s", TaskSessionPurge, task.Type())
	}
	payload, err := ParseSessionPurgePayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.LastSeen != 1700000000 || payload.SessionID == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSessionPurgeTaskRequiresID(t *testing.T) {
	if _, err := NewSessionPurgeTask(SessionPurgePayload{SessionID: "  "}); err == nil {
		t.Fatalf("expected error for blank session id")
	}
	if _, err := ParseSessionPurgePayload(asynq.NewTask(TaskSessionPurge, []byte("{"))); err == nil {
		t.Fatalf("expected error for corrupt payload")
	}
	if _, err := ParseSessionPurgePayload(nil); err == nil {
		t.Fatalf("expected error for nil task")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueSessionPurge(SessionPurgePayload{SessionID: "x"}, 0); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client should report disabled")
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 3, Queues: map[string]int{"default": 5}})
	if opt.Addr != "redis:6380" || opt.DB != 2 || cfg.Concurrency != 3 || cfg.Queues["default"] != 5 {
		t.Fatalf("unexpected server config: %+v %+v", opt, cfg)
	}
}

func TestPurgeTaskIDIsStablePerVisit(t *testing.T) {
	a := purgeTaskID(SessionPurgePayload{SessionID: " abc ", LastSeen: 10})
	b := purgeTaskID(SessionPurgePayload{SessionID: "abc", LastSeen: 10})
	c := purgeTaskID(SessionPurgePayload{SessionID: "abc", LastSeen: 11})
	if a != b {
		t.Fatalf("same visit should share an id: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("a later visit needs a new id")
	}
}
