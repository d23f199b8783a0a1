package refs

import (
	"errors"
	"sync"
	"testing"
)

func TestBackend_Basic(t *testing.T) {
	b := NewBackend()

	handle, err := b.Create(kindLocal, "test value")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, kind, ok := b.Get(handle)
	if !ok || val != "test value" || kind != kindLocal {
		t.Fatalf("Get = %v, %v, %v", val, kind, ok)
	}

	val, _, ok = b.Drop(handle)
	if !ok || val != "test value" {
		t.Fatalf("Drop = %v, %v", val, ok)
	}

	if _, _, ok = b.Get(handle); ok {
		t.Fatal("Expected Get to fail after Drop")
	}
}

func TestBackend_InvalidHandles(t *testing.T) {
	b := NewBackend()

	if _, _, ok := b.Get(0); ok {
		t.Error("handle 0 must be invalid")
	}
	if _, _, ok := b.Get(99); ok {
		t.Error("out of range handle must be invalid")
	}
	if _, _, ok := b.Drop(99); ok {
		t.Error("Drop of out of range handle must fail")
	}
}

func TestBackend_Closed(t *testing.T) {
	b := NewBackend()
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Create(kindLocal, 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Create after Close = %v, want ErrClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
}

func TestBackend_Concurrent(t *testing.T) {
	b := NewBackend()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				h, err := b.Create(kindGlobal, j)
				if err != nil {
					t.Error(err)
					return
				}
				if _, _, ok := b.Drop(h); !ok {
					t.Error("drop failed")
					return
				}
			}
		}()
	}
	wg.Wait()

	if b.Len() != 0 {
		t.Fatalf("Len() = %d after balanced create/drop", b.Len())
	}
}
