package llmstream

import (
	"context"
	"testing"
	"time"
)

func TestPauseController_WaitWhenRunning(t *testing.T) {
	p := NewPauseController()
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait on a running controller returned %v", err)
	}
}

func TestPauseController_NilIsNoop(t *testing.T) {
	var p *PauseController
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait on nil controller returned %v", err)
	}
	if p.Paused() {
		t.Error("nil controller reports paused")
	}
}

func TestPauseController_PauseBlocksUntilResume(t *testing.T) {
	p := NewPauseController()
	p.Pause()
	if !p.Paused() {
		t.Fatal("Paused() = false after Pause")
	}

	released := make(chan time.Duration, 1)
	start := time.Now()
	go func() {
		_ = p.Wait(context.Background())
		released <- time.Since(start)
	}()

	time.Sleep(200 * time.Millisecond)
	p.Resume()

	select {
	case elapsed := <-released:
		if elapsed < 200*time.Millisecond {
			t.Errorf("Wait released after %v, want at least the pause duration", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait never released after Resume")
	}
}

func TestPauseController_CancelWhilePaused(t *testing.T) {
	p := NewPauseController()
	p.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Wait = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not observe cancellation while paused")
	}
}

func TestPauseController_Idempotent(t *testing.T) {
	p := NewPauseController()
	p.Resume() // resume while running is a no-op
	p.Pause()
	p.Pause() // second pause must not replace the resume channel waiters hold

	done := make(chan struct{})
	go func() {
		_ = p.Wait(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	p.Resume()
	p.Resume()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter stuck after idempotent pause/resume sequence")
	}
}
