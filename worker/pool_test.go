package worker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewPoolRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -8} {
		if _, err := NewPool(size, nil); err == nil {
			t.Fatalf("expected error for pool size %d", size)
		}
	}
}

func TestPoolRunsEveryTask(t *testing.T) {
	p, err := NewPool(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	if got := atomic.LoadInt64(&n); got != 100 {
		t.Fatalf("expected 100 tasks to run, got %d", got)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p, err := NewPool(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	var n int64
	for i := 0; i < 10; i++ {
		if err := p.Submit(func() { atomic.AddInt64(&n, 1) }); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&n); got != 10 {
		t.Fatalf("expected queued tasks to finish before shutdown returns, got %d", got)
	}
	for i, s := range p.Health() {
		if s != STOPPED {
			t.Fatalf("worker %d: expected STOPPED, got %v", i, s)
		}
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	p, err := NewPool(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit(func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if err := p.Shutdown(); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected second shutdown to fail with ErrPoolClosed, got %v", err)
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := NewPool(1, logger)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	if err := p.Submit(func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit(func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	<-done
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == log.ErrorLevel && e.Message == "[Worker] Task panicked" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the panic to be logged")
	}
}

func TestWorkerLifecycleLoggedAtTrace(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.TraceLevel)
	p, err := NewPool(2, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	starts, ends := 0, 0
	for _, e := range hook.AllEntries() {
		if e.Level != log.TraceLevel {
			continue
		}
		switch e.Message {
		case "[Worker] Start serving":
			starts++
		case "[Worker] End serving":
			ends++
		}
	}
	if starts != 2 || ends != 2 {
		t.Fatalf("expected 2 start and 2 end trace entries, got %d and %d", starts, ends)
	}
}

func TestWorkerIdentity(t *testing.T) {
	p, err := NewPool(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Shutdown()
	seen := make(map[string]bool)
	for i, wr := range p.workers {
		if wr.ID != i {
			t.Fatalf("expected worker id %d, got %d", i, wr.ID)
		}
		if wr.UUID == "" || seen[wr.UUID] {
			t.Fatalf("worker %d has empty or duplicate uuid %q", i, wr.UUID)
		}
		seen[wr.UUID] = true
	}
	if p.Size() != 3 {
		t.Fatalf("expected size 3, got %d", p.Size())
	}
}
