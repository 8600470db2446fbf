/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package implreg

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"dirpx.dev/implreg/apis"
	"dirpx.dev/implreg/builder"
	"dirpx.dev/implreg/config"
	"dirpx.dev/implreg/handshake"
	"dirpx.dev/implreg/registry"
)

// reset installs a fresh, unpinned default context.
func reset(tb testing.TB) {
	tb.Helper()
	cfg := config.DefaultConfig()
	SetAll(&cfg, nil, handshake.New(cfg), builder.New())
	UnpinContext()
	_ = Drain()
}

func sample(tb testing.TB, lib string) apis.Registry {
	tb.Helper()
	b := registry.NewBuilder()
	if err := b.Add(lib, apis.Descriptor{Text: "impl", Types: []string{lib + "::T"}}); err != nil {
		tb.Fatalf("Add: %v", err)
	}
	return b.Build()
}

// ---------------------- Test doubles (mocks) ----------------------

type mockBuilder struct {
	mu      sync.Mutex
	builds  int
	lastCfg apis.Config
	lastExt any
	nilCtx  bool
}

func (b *mockBuilder) BuildContext(cfg apis.Config, prev apis.Context, ext any) apis.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builds++
	b.lastCfg, b.lastExt = cfg, ext
	if b.nilCtx {
		return nil
	}
	return builder.New().BuildContext(cfg, prev, ext)
}

// ---------------------- Tests ----------------------

func TestDefault_DeliverWithoutHookQueues(t *testing.T) {
	reset(t)

	reg := sample(t, "a")
	out, err := Deliver(reg)
	if err != nil || out != apis.Queued {
		t.Fatalf("Deliver = (%v,%v), want (queued,nil)", out, err)
	}
	got := Drain()
	if len(got) != 1 || got[0] != reg {
		t.Fatalf("Drain = %v, want [reg]", got)
	}
}

func TestDefault_RegisterFlushes(t *testing.T) {
	reset(t)

	reg := sample(t, "a")
	_, _ = Deliver(reg)

	var seen []apis.Registry
	if err := Register(func(r apis.Registry) { seen = append(seen, r) }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(seen) != 1 || seen[0] != reg {
		t.Fatalf("hook saw %v, want [reg]", seen)
	}
	if Context().State() != apis.Registered {
		t.Fatalf("State = %v, want registered", Context().State())
	}
}

func TestSetConfig_RebuildsAndMigrates(t *testing.T) {
	reset(t)
	mb := &mockBuilder{}
	SetBuilder(mb)

	reg := sample(t, "a")
	_, _ = Deliver(reg)
	before := Context()

	cfg := config.NewConfig(config.WithPending(apis.PendingSlot))
	SetConfig(cfg)

	if Context() == before {
		t.Fatal("SetConfig did not rebuild the unpinned context")
	}
	if Config() != cfg {
		t.Fatalf("Config = %+v, want %+v", Config(), cfg)
	}
	if mb.lastCfg != cfg {
		t.Fatalf("builder saw cfg %+v, want %+v", mb.lastCfg, cfg)
	}
	if got := Drain(); len(got) != 1 || got[0] != reg {
		t.Fatalf("pending not migrated: %v", got)
	}
}

func TestSetContext_PinsAgainstRebuild(t *testing.T) {
	reset(t)
	own := handshake.New(config.DefaultConfig())
	SetContext(own)

	if !IsContextPinned() {
		t.Fatal("SetContext must pin")
	}
	SetConfig(config.NewConfig(config.WithWorkers(8)))
	SetExt("policy")
	if Context() != own {
		t.Fatal("pinned context was rebuilt")
	}

	UnpinContext()
	SetConfig(config.DefaultConfig())
	if Context() == own {
		t.Fatal("unpinned context was not rebuilt")
	}
}

func TestSetContext_NilIsNoop(t *testing.T) {
	reset(t)
	before := Context()
	SetContext(nil)
	if Context() != before {
		t.Fatal("SetContext(nil) replaced the context")
	}
}

func TestSetExt_PassedToBuilder(t *testing.T) {
	reset(t)
	mb := &mockBuilder{}
	SetBuilder(mb)

	SetExt(42)
	if v, ok := ExtAs[int](); !ok || v != 42 {
		t.Fatalf("ExtAs[int] = (%v,%v), want (42,true)", v, ok)
	}
	if mb.lastExt != 42 {
		t.Fatalf("builder saw ext %v, want 42", mb.lastExt)
	}
	if _, ok := ExtAs[string](); ok {
		t.Fatal("ExtAs[string] should fail for an int ext")
	}
}

func TestSetBuilder_NilContextPanics(t *testing.T) {
	reset(t)
	defer func() {
		if r := recover(); r != ErrNilContext {
			t.Fatalf("recover = %v, want ErrNilContext", r)
		}
		reset(t)
	}()
	SetBuilder(&mockBuilder{nilCtx: true})
}

func TestPinUnpin(t *testing.T) {
	reset(t)
	PinContext()
	if !IsContextPinned() {
		t.Fatal("PinContext did not pin")
	}
	UnpinContext()
	if IsContextPinned() {
		t.Fatal("UnpinContext did not unpin")
	}
}

// TestConcurrentReadsDuringSwaps checks the snapshot stays consistent while
// writers swap configuration.
func TestConcurrentReadsDuringSwaps(t *testing.T) {
	reset(t)
	if err := Register(func(apis.Registry) {}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg := sample(t, "a")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			SetConfig(config.NewConfig(config.WithPendingLimit(i % 5)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			if _, err := Deliver(reg); err != nil {
				t.Errorf("Deliver: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

// TestNoDeliveryLostDuringSwaps checks that registries delivered while the
// default context is being rebuilt all end up buffered in the current one.
func TestNoDeliveryLostDuringSwaps(t *testing.T) {
	reset(t)
	reg := sample(t, "a")

	const perWorker = 500
	workers := runtime.GOMAXPROCS(0) * 4
	var sent atomic.Int64

	stop := make(chan struct{})
	swapped := make(chan struct{})
	go func() {
		defer close(swapped)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			SetConfig(config.NewConfig(config.WithWorkers(1 + i%4)))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				out, err := Deliver(reg)
				if err != nil || out != apis.Queued {
					t.Errorf("Deliver = (%v,%v), want (queued,nil)", out, err)
					return
				}
				sent.Add(1)
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-swapped

	if got, want := len(Drain()), int(sent.Load()); got != want {
		t.Fatalf("buffered %d registries, sent %d (lost %d)", got, want, want-got)
	}
}

// TestNoDeliveryLostDuringSwaps_WithHook checks the same with a hook
// registered, counting hook calls instead of buffered registries.
func TestNoDeliveryLostDuringSwaps_WithHook(t *testing.T) {
	reset(t)
	var delivered atomic.Int64
	if err := Register(func(apis.Registry) { delivered.Add(1) }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	reg := sample(t, "a")

	const perWorker = 500
	workers := runtime.GOMAXPROCS(0) * 4

	var wg sync.WaitGroup
	wg.Add(workers + 1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			SetConfig(config.NewConfig(config.WithWorkers(1 + i%4)))
		}
	}()
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := Deliver(reg); err != nil {
					t.Errorf("Deliver: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := int64(workers * perWorker)
	if got := delivered.Load() + int64(len(Drain())); got != want {
		t.Fatalf("hook saw %d registries, want %d", got, want)
	}
}
