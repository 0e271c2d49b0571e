package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"
)

type failingService struct{ err error }

func (s failingService) Name() string { return "failing" }
func (s failingService) Start(context.Context) error { return s.err }
func (s failingService) Stop(context.Context) error { return nil }

func TestRunnerStopsJanitorWhenServiceFails(t *testing.T) {
	manager := session.NewManager(repository.NewMemoryStorageRepository(), nil, session.Options{IdleTTL: time.Minute})
	janitor := NewJanitorService(manager, 5*time.Millisecond)
	boom := errors.New("boom")

	done := make(chan error, 1)
	go func() {
		done <- NewRunner(janitor, failingService{err: boom}).Run(context.Background(), time.Second, nil)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("runner error want boom got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not return")
	}
}

func TestRunnerCancelledContextReturnsNil(t *testing.T) {
	manager := session.NewManager(repository.NewMemoryStorageRepository(), nil, session.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(NewJanitorService(manager, time.Second)).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled runner should return nil, got %v", err)
	}
}

func TestJanitorRequiresManager(t *testing.T) {
	if err := NewJanitorService(nil, time.Second).Start(context.Background()); err == nil {
		t.Fatalf("janitor without manager should fail")
	}
	if NewRunner().Run(context.Background(), 0, nil) == nil {
		t.Fatalf("empty runner should fail")
	}
}
