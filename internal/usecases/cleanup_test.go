package usecases

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"video-hub/internal/domain/entities"
	"video-hub/internal/infrastructure/queue"
)

func TestSweepOrphanAssets(t *testing.T) {
	ctx := context.Background()
	orphans := queue.NewMemoryOrphanQueue()
	media := &fakeMediaStore{}
	svc := NewCleanupService(t.TempDir(), media, orphans, 2, zap.NewNop())

	for _, id := range []string{"a", "b", "c"} {
		orphans.Push(ctx, entities.OrphanAsset{PublicID: id, ResourceType: "image"})
	}

	res, err := svc.SweepOrphanAssets(ctx)
	if err != nil {
		t.Fatalf("SweepOrphanAssets: %v", err)
	}
	if res.Processed != 3 || res.Deleted != 3 || res.Requeued != 0 {
		t.Errorf("result = %+v", res)
	}
	if n, _ := orphans.Len(ctx); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestSweepOrphanAssetsRequeuesAndDrops(t *testing.T) {
	ctx := context.Background()
	orphans := queue.NewMemoryOrphanQueue()
	media := &fakeMediaStore{deleteErr: stderrors.New("still unreachable")}
	svc := NewCleanupService(t.TempDir(), media, orphans, 1, zap.NewNop())

	orphans.Push(ctx, entities.OrphanAsset{PublicID: "fresh", ResourceType: "video"})
	orphans.Push(ctx, entities.OrphanAsset{PublicID: "stale", ResourceType: "video", Attempts: 4})

	res, err := svc.SweepOrphanAssets(ctx)
	if err != nil {
		t.Fatalf("SweepOrphanAssets: %v", err)
	}
	if res.Processed != 2 || res.Requeued != 1 || res.Dropped != 1 {
		t.Errorf("result = %+v", res)
	}

	left, _ := orphans.Pop(ctx)
	if left == nil || left.PublicID != "fresh" || left.Attempts != 1 || left.Reason != "still unreachable" {
		t.Errorf("requeued entry = %+v", left)
	}
	if extra, _ := orphans.Pop(ctx); extra != nil {
		t.Errorf("unexpected entry %+v", extra)
	}
}

// blockingDeleteStore holds every Delete until the caller's context ends.
type blockingDeleteStore struct {
	*fakeMediaStore
	started chan struct{}
	once    sync.Once
}

func (b *blockingDeleteStore) Delete(ctx context.Context, publicID, resourceType string) error {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return ctx.Err()
}

func TestSweepOrphanAssetsCancelledKeepsEntries(t *testing.T) {
	orphans := queue.NewMemoryOrphanQueue()
	media := &blockingDeleteStore{fakeMediaStore: &fakeMediaStore{}, started: make(chan struct{})}
	svc := NewCleanupService(t.TempDir(), media, orphans, 1, zap.NewNop())

	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		orphans.Push(context.Background(), entities.OrphanAsset{PublicID: id, ResourceType: "video"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan SweepResult, 1)
	go func() {
		res, _ := svc.SweepOrphanAssets(ctx)
		done <- res
	}()
	<-media.started
	cancel()

	var res SweepResult
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not return after cancel")
	}
	if res.Deleted != 0 || res.Dropped != 0 {
		t.Errorf("result = %+v", res)
	}

	bg := context.Background()
	if n, _ := orphans.Len(bg); n != int64(len(ids)) {
		t.Fatalf("queue length = %d, want %d", n, len(ids))
	}
	seen := map[string]bool{}
	for {
		a, _ := orphans.Pop(bg)
		if a == nil {
			break
		}
		if a.Attempts != 0 {
			t.Errorf("%s attempts = %d, want 0", a.PublicID, a.Attempts)
		}
		seen[a.PublicID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("%s lost from the queue", id)
		}
	}
}

func TestSweepOrphanAssetsEmptyQueue(t *testing.T) {
	media := &fakeMediaStore{}
	svc := NewCleanupService(t.TempDir(), media, queue.NewMemoryOrphanQueue(), 2, zap.NewNop())

	res, err := svc.SweepOrphanAssets(context.Background())
	if err != nil || res.Processed != 0 {
		t.Fatalf("result = %+v, %v", res, err)
	}
	if media.remoteCalls() != 0 {
		t.Error("media store touched on an empty queue")
	}
}

func TestCleanupOldTempFiles(t *testing.T) {
	dir := t.TempDir()
	svc := NewCleanupService(dir, &fakeMediaStore{}, queue.NewMemoryOrphanQueue(), 1, zap.NewNop())

	oldFile := filepath.Join(dir, "old.mp4")
	newFile := filepath.Join(dir, "new.mp4")
	for _, p := range []string{oldFile, newFile} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	if err := svc.CleanupOldTempFiles(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldTempFiles: %v", err)
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old file still present")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("new file removed: %v", err)
	}
}

func TestCleanupTempFilesRemovesEveryPath(t *testing.T) {
	dir := t.TempDir()
	svc := NewCleanupService(dir, &fakeMediaStore{}, queue.NewMemoryOrphanQueue(), 1, zap.NewNop())

	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.jpg")
	os.WriteFile(a, []byte("a"), 0o644)
	os.WriteFile(b, []byte("b"), 0o644)

	svc.CleanupTempFiles(a, "", filepath.Join(dir, "missing"), b)

	for _, p := range []string{a, b} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still present", p)
		}
	}
}
