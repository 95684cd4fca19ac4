package compactpdf

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func mockFactory(created *atomic.Int32) func() (*Converter, error) {
	return func() (*Converter, error) {
		created.Add(1)
		return NewConverter(WithRenderer(&mockRenderer{}))
	}
}

func TestConverterPool_LazyCreation(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := NewConverterPool(2, mockFactory(&created))
	defer pool.Close()

	if created.Load() != 0 {
		t.Fatalf("created = %d before Acquire, want 0", created.Load())
	}

	a, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(a)

	b, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if a != b {
		t.Error("released converter should be reused")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
	pool.Release(b)
}

func TestConverterPool_BoundedCapacity(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	pool := NewConverterPool(3, mockFactory(&created))
	defer pool.Close()

	var wg sync.WaitGroup
	for range 12 {
		wg.Go(func() {
			c, err := pool.Acquire()
			if err != nil {
				t.Error(err)
				return
			}
			runtime.Gosched()
			pool.Release(c)
		})
	}
	wg.Wait()

	if n := created.Load(); n > 3 {
		t.Errorf("created = %d converters, want at most 3", n)
	}
}

func TestConverterPool_FactoryError(t *testing.T) {
	t.Parallel()

	fail := true
	pool := NewConverterPool(1, func() (*Converter, error) {
		if fail {
			return nil, errors.New("no browser")
		}
		return NewConverter(WithRenderer(&mockRenderer{}))
	})
	defer pool.Close()

	if _, err := pool.Acquire(); err == nil {
		t.Fatal("Acquire() error = nil, want factory error")
	}

	// The failed slot is returned, so a later acquire can still create.
	fail = false
	c, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after failure error = %v", err)
	}
	pool.Release(c)
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{}
	pool := NewConverterPool(1, func() (*Converter, error) {
		return NewConverter(WithRenderer(renderer))
	})

	c, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(c)

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !renderer.closed {
		t.Error("Close() should close every converter")
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	pool.Release(c) // no-op after close
}

func TestConverterPool_AcquireAfterClose(t *testing.T) {
	t.Parallel()

	t.Run("idle converter is not handed out", func(t *testing.T) {
		t.Parallel()

		var created atomic.Int32
		pool := NewConverterPool(2, mockFactory(&created))
		c, err := pool.Acquire()
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		pool.Release(c)
		if err := pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		for i := range 3 {
			got, err := pool.Acquire()
			if !errors.Is(err, ErrPoolClosed) {
				t.Errorf("Acquire() #%d error = %v, want ErrPoolClosed", i+1, err)
			}
			if got != nil {
				t.Errorf("Acquire() #%d = %p, want nil", i+1, got)
			}
		}
		if created.Load() != 1 {
			t.Errorf("created = %d, want 1", created.Load())
		}
	})

	t.Run("free capacity does not create", func(t *testing.T) {
		t.Parallel()

		var created atomic.Int32
		pool := NewConverterPool(3, mockFactory(&created))
		if err := pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
		}
		if created.Load() != 0 {
			t.Errorf("created = %d, want 0", created.Load())
		}
	})

	t.Run("blocked acquire wakes up", func(t *testing.T) {
		t.Parallel()

		var created atomic.Int32
		pool := NewConverterPool(1, mockFactory(&created))
		if _, err := pool.Acquire(); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}

		done := make(chan error, 1)
		go func() {
			_, err := pool.Acquire()
			done <- err
		}()
		runtime.Gosched()
		if err := pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := <-done; !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
		}
	})

	t.Run("converter built during close is closed", func(t *testing.T) {
		t.Parallel()

		renderer := &mockRenderer{}
		entered := make(chan struct{})
		proceed := make(chan struct{})
		pool := NewConverterPool(1, func() (*Converter, error) {
			close(entered)
			<-proceed
			return NewConverter(WithRenderer(renderer))
		})

		done := make(chan error, 1)
		go func() {
			_, err := pool.Acquire()
			done <- err
		}()
		<-entered
		if err := pool.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		close(proceed)

		if err := <-done; !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Acquire() error = %v, want ErrPoolClosed", err)
		}
		if !renderer.closed {
			t.Error("converter created after Close should be closed")
		}
	})
}

func TestNewConverterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -3} {
		if got := NewConverterPool(n, nil).Size(); got != MinPoolSize {
			t.Errorf("NewConverterPool(%d).Size() = %d, want %d", n, got, MinPoolSize)
		}
	}
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		chrome  bool
		want    int
	}{
		{"explicit", 3, false, 3},
		{"explicit capped", 50, true, MaxPoolSize},
		{"auto native", 0, false, max(MinPoolSize, min(runtime.GOMAXPROCS(0), MaxPoolSize))},
		{"auto chrome", 0, true, max(MinPoolSize, min(runtime.GOMAXPROCS(0)/2, MaxPoolSize))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers, tt.chrome); got != tt.want {
				t.Errorf("ResolvePoolSize(%d, %v) = %d, want %d", tt.workers, tt.chrome, got, tt.want)
			}
		})
	}
}
