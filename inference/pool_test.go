package inference

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakePool builds a pool of sessions that hold no ONNX resources, so the
// pooling logic can be tested without a model or runtime.
func fakePool(size int) *Pool {
	pool := newPool(size)
	for i := 0; i < size; i++ {
		pool.sessions <- &Session{layers: []string{"hidden_states.0"}}
	}
	return pool
}

func TestNewPool_ModelNotFound(t *testing.T) {
	_, err := NewPool("../testdata/nonexistent.onnx", []string{"hidden_states.0"}, 2)
	if err == nil {
		t.Error("expected error for non-existent model file")
	}
}

func TestNewPool_InvalidSize(t *testing.T) {
	modelPath := skipIfNoModel(t)
	layers := layerOutputsOrSkip(t, modelPath)

	// Size <= 0 should default to 1
	for _, size := range []int{0, -5} {
		pool, err := NewPool(modelPath, layers, size)
		if err != nil {
			t.Fatalf("NewPool failed: %v", err)
		}
		if pool.Size() != 1 {
			t.Errorf("expected size 1 for input %d, got %d", size, pool.Size())
		}
		_ = pool.Close()
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	pool := fakePool(2)
	defer func() { _ = pool.Close() }()

	ctx := context.Background()

	s1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}

	s2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 2 failed: %v", err)
	}

	// Third acquire should block - test with timeout
	ctx3, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx3)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	// Release one and acquire again should work
	pool.Release(s1)

	s3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 3 failed: %v", err)
	}

	pool.Release(s2)
	pool.Release(s3)
}

func TestPool_ReleaseNil(t *testing.T) {
	pool := fakePool(1)
	defer func() { _ = pool.Close() }()

	// Should not panic when releasing nil
	pool.Release(nil)
}

func TestPool_Close_Idempotent(t *testing.T) {
	pool := fakePool(2)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestPool_AcquireAfterClose(t *testing.T) {
	pool := fakePool(1)
	_ = pool.Close()

	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ReleaseAfterClose(t *testing.T) {
	pool := fakePool(1)

	session, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Release should close the session instead of returning it to pool
	pool.Release(session)
	if !session.closed {
		t.Error("expected session to be closed after release into closed pool")
	}
}

func TestPool_ReleaseExcess(t *testing.T) {
	pool := fakePool(1)
	defer func() { _ = pool.Close() }()

	extra := &Session{}
	pool.Release(extra)
	if !extra.closed {
		t.Error("expected excess session to be closed")
	}
}

func TestPool_AcquireContextCancellation(t *testing.T) {
	pool := fakePool(1)
	defer func() { _ = pool.Close() }()

	ctx := context.Background()

	s1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	defer pool.Release(s1)

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()

	_, err = pool.Acquire(cancelledCtx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ConcurrentAccess(t *testing.T) {
	pool := fakePool(3)
	defer func() { _ = pool.Close() }()

	ctx := context.Background()
	numGoroutines := 10
	numIterations := 5

	var wg sync.WaitGroup
	var successCount int64
	var errCount int64

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				acquireCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
				session, err := pool.Acquire(acquireCtx)
				cancel()

				if err != nil {
					atomic.AddInt64(&errCount, 1)
					continue
				}

				time.Sleep(time.Millisecond)

				pool.Release(session)
				atomic.AddInt64(&successCount, 1)
			}
		}()
	}

	wg.Wait()

	if successCount == 0 {
		t.Error("expected at least some successful acquire/release cycles")
	}

	t.Logf("Concurrent test completed: %d successes, %d timeouts", successCount, errCount)
}

func TestPool_Size(t *testing.T) {
	for _, size := range []int{1, 2, 5} {
		pool := fakePool(size)
		if got := pool.Size(); got != size {
			t.Errorf("Size() = %d, want %d", got, size)
		}
		_ = pool.Close()
	}
}
