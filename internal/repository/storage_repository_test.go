package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

func setupStorageRepositoryTest(t *testing.T) *GormStorageRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := models.OpenDB(models.DBOptions{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate storage entry failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewStorageRepository(db)
}

func exerciseStorageRepository(t *testing.T, repo StorageRepository) {
	t.Helper()
	ctx := context.Background()
	key := SessionKey("3b0e8e52-4d61-4b1f-8a35-0c7f7c0e9a10", "cart")

	if _, ok, err := repo.Load(ctx, key); err != nil || ok {
		t.Fatalf("empty load want ok=false err=nil got ok=%v err=%v", ok, err)
	}
	if err := repo.Save(ctx, key, []byte(`[{"id":"A"}]`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(ctx, key, []byte(`[{"id":"B"}]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	raw, ok, err := repo.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if string(raw) != `[{"id":"B"}]` {
		t.Fatalf("last writer should win, got %s", raw)
	}
	if err := repo.Clear(ctx, key); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := repo.Clear(ctx, key); err != nil {
		t.Fatalf("clear missing key should be a no-op, got %v", err)
	}
	if _, ok, _ := repo.Load(ctx, key); ok {
		t.Fatalf("entry should be gone after clear")
	}
	if err := repo.Save(ctx, " ", nil); err != ErrStorageKeyEmpty {
		t.Fatalf("empty key want ErrStorageKeyEmpty got %v", err)
	}
}

func TestGormStorageRepository(t *testing.T) {
	exerciseStorageRepository(t, setupStorageRepositoryTest(t))
}

func TestMemoryStorageRepository(t *testing.T) {
	repo := NewMemoryStorageRepository()
	exerciseStorageRepository(t, repo)
	if repo.Len() != 0 {
		t.Fatalf("memory repo want empty got %d", repo.Len())
	}
}

func TestMemoryStorageRepositoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStorageRepository()
	value := []byte("abc")
	if err := repo.Save(ctx, "k", value); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	value[0] = 'z'
	raw, _, _ := repo.Load(ctx, "k")
	if string(raw) != "abc" {
		t.Fatalf("stored value should not alias caller slice, got %s", raw)
	}
}

func TestSessionKey(t *testing.T) {
	if got := SessionKey(" abc ", " auth "); got != "session:abc:auth" {
		t.Fatalf("session key mismatch: %s", got)
	}
}
