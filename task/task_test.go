package task

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni/sim"
	"github.com/wippyai/pte-bridge/jvm"
)

func boot(t *testing.T) (*jvm.Runtime, *sim.VM) {
	t.Helper()
	l := sim.NewLauncher(nil)
	rt, err := jvm.New(context.Background(), l, jvm.WithClassPath("/dev/null"), jvm.WithDebug(""))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(rt.Unref)
	return rt, l.VM()
}

type resource struct{ released atomic.Bool }

func (r *resource) Release() { r.released.Store(true) }

func TestRun_AttachesWorker(t *testing.T) {
	rt, vm := boot(t)
	pool := NewPool(2)

	fut := Run(context.Background(), pool, rt, "pte-test", func(ctx context.Context) (string, error) {
		if rt.Env() == nil {
			return "", stderrors.New("worker not attached")
		}
		for _, name := range vm.Threads() {
			if strings.HasPrefix(name, "pte-test-") {
				return name, nil
			}
		}
		return "", stderrors.New("worker thread name not found")
	})
	name, err := fut.Await(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(name) != len("pte-test-")+8 {
		t.Errorf("thread name = %q", name)
	}
	if n := len(vm.Threads()); n != 1 {
		t.Errorf("%d threads attached after task, want 1", n)
	}
}

func TestRun_PropagatesError(t *testing.T) {
	rt, _ := boot(t)
	want := errors.ServiceDown()

	_, err := Run(context.Background(), NewPool(1), rt, "pte-test", func(context.Context) (int, error) {
		return 0, want
	}).Await(context.Background())
	if !stderrors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestRun_AttachFailure(t *testing.T) {
	rt, vm := boot(t)
	vm.FailAttach(true)
	defer vm.FailAttach(false)

	var ran bool
	_, err := Run(context.Background(), NewPool(1), rt, "pte-test", func(context.Context) (int, error) {
		ran = true
		return 1, nil
	}).Await(context.Background())
	if !IsThreading(err) {
		t.Errorf("err = %v, want jvm-threading", err)
	}
	if ran {
		t.Error("task ran without an attached thread")
	}
}

func TestRun_CancelDiscardsResult(t *testing.T) {
	rt, _ := boot(t)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	res := &resource{}

	fut := Run(ctx, NewPool(1), rt, "pte-test", func(context.Context) (*resource, error) {
		close(started)
		<-ctx.Done()
		return res, nil
	})
	<-started
	cancel()

	v, err := fut.Await(context.Background())
	if !IsDiscarded(err) || v != nil {
		t.Errorf("Await = %v, %v; want discarded", v, err)
	}
	if !res.released.Load() {
		t.Error("discarded result was not released")
	}
}

func TestRun_CancelWhileQueued(t *testing.T) {
	rt, _ := boot(t)
	pool := NewPool(1)
	block := make(chan struct{})

	first := Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	second := Run(ctx, pool, rt, "pte-test", func(context.Context) (int, error) {
		ran.Store(true)
		return 2, nil
	})
	time.Sleep(10 * time.Millisecond)
	cancel()

	if _, err := second.Await(context.Background()); !IsDiscarded(err) {
		t.Errorf("queued task err = %v", err)
	}
	close(block)
	if v, err := first.Await(context.Background()); err != nil || v != 1 {
		t.Errorf("first = %d, %v", v, err)
	}
	if ran.Load() {
		t.Error("cancelled task ran")
	}
}

func TestPool_SubmissionOrder(t *testing.T) {
	rt, _ := boot(t)
	pool := NewPool(1)
	block := make(chan struct{})
	var (
		mu    sync.Mutex
		order []int
	)

	futures := []*Future[int]{Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
		<-block
		return 0, nil
	})}
	for i := 1; i <= 5; i++ {
		futures = append(futures, Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}
	close(block)
	for _, f := range futures {
		f.Await(context.Background())
	}
	for i, got := range order {
		if got != i+1 {
			t.Fatalf("tasks ran in order %v", order)
		}
	}
}

func TestRun_CancelledQueueDoesNotBlock(t *testing.T) {
	rt, _ := boot(t)
	pool := NewPool(1)
	block := make(chan struct{})

	first := Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
		<-block
		return 1, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	second := Run(ctx, pool, rt, "pte-test", func(context.Context) (int, error) { return 2, nil })
	third := Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) { return 3, nil })
	cancel()

	if _, err := second.Await(context.Background()); !IsDiscarded(err) {
		t.Errorf("cancelled task err = %v", err)
	}
	close(block)
	first.Await(context.Background())
	if v, err := third.Await(context.Background()); err != nil || v != 3 {
		t.Errorf("third = %d, %v", v, err)
	}
}

func TestRun_CommitKeepsResult(t *testing.T) {
	rt, _ := boot(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res := &resource{}

	v, err := Run(ctx, NewPool(1), rt, "pte-test", func(ctx context.Context) (*resource, error) {
		Commit(ctx)
		cancel()
		return res, nil
	}).Await(context.Background())
	if err != nil || v != res {
		t.Errorf("Await = %v, %v; want the committed result", v, err)
	}
	if res.released.Load() {
		t.Error("committed result was released")
	}
}

func TestPool_Bound(t *testing.T) {
	rt, _ := boot(t)
	pool := NewPool(2)
	var running, peak atomic.Int32

	var futures []*Future[int]
	for i := 0; i < 6; i++ {
		futures = append(futures, Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return 0, nil
		}))
	}
	for _, f := range futures {
		f.Await(context.Background())
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestFuture_Delivery(t *testing.T) {
	rt, _ := boot(t)
	queue := make(chan func(), 4)
	pool := NewPool(1, WithDelivery(func(fn func()) { queue <- fn }))

	fut := Run(context.Background(), pool, rt, "pte-test", func(context.Context) (int, error) {
		return 7, nil
	})
	var (
		mu  sync.Mutex
		got []int
	)
	record := func(v int, err error) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	}
	fut.OnComplete(record)
	<-fut.Done()
	fut.OnComplete(record)

	for i := 0; i < 2; i++ {
		select {
		case fn := <-queue:
			fn()
		case <-time.After(time.Second):
			t.Fatal("callback not delivered")
		}
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 7 {
		t.Errorf("callbacks got %v", got)
	}
	if v, err, ok := fut.Result(); !ok || err != nil || v != 7 {
		t.Errorf("Result = %d, %v, %v", v, err, ok)
	}
}

func TestCompleted(t *testing.T) {
	f := Completed(3, nil)
	if v, _, ok := f.Result(); !ok || v != 3 {
		t.Errorf("Result = %d, %v", v, ok)
	}
}
