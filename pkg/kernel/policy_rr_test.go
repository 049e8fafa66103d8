// Copyright 2018 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kernel

import (
	"testing"
	"time"

	"github.com/minikernel/xkernel/pkg/config"
)

func TestRRSelectNextIsFairAcrossRunnableEntries(t *testing.T) {
	cfg := config.Default()
	cfg.NPROC = 3
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i, p := range k.proc {
		p.state = StateRunnable
		p.pid = i + 1
	}

	seen := map[int]int{}
	for i := 0; i < 9; i++ {
		p := k.policy.selectNext(k, nil)
		if p == nil {
			t.Fatalf("selectNext returned nil with every entry runnable")
		}
		seen[p.pid]++
	}
	for idx, p := range k.proc {
		if seen[p.pid] != 3 {
			t.Fatalf("entry %d selected %d times over 9 rounds, want 3 (perfectly fair)", idx, seen[p.pid])
		}
	}
}

func TestRRSelectNextSkipsNonRunnable(t *testing.T) {
	cfg := config.Default()
	cfg.NPROC = 2
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k.proc[0].state = StateZombie
	k.proc[1].state = StateRunnable

	got := k.policy.selectNext(k, nil)
	if got != k.proc[1] {
		t.Fatalf("selectNext returned %v, want the one runnable entry", got)
	}
}

// TestRRConcurrentSpinnersAllProgress: CPU-bound siblings scheduled
// round-robin all accumulate run time; none is starved while another
// finishes. Exact per-tick splits are timing-dependent, so the test
// asserts every child ran a meaningful share rather than an exact
// third.
func TestRRConcurrentSpinnersAllProgress(t *testing.T) {
	cfg := testConfig(config.PolicyRR)
	cfg.NCPU = 1
	k := bootTestKernel(t, cfg)

	const nchildren = 3
	rtimesCh := make(chan uint64, nchildren)

	_, err := k.InitProc("init", func(k *Kernel, p *Process) {
		for i := 0; i < nchildren; i++ {
			if _, ferr := k.Fork(p, "spinner", func(k *Kernel, p *Process) {
				k.RunTicks(p, 20)
			}); ferr != nil {
				t.Errorf("Fork: %v", ferr)
				return
			}
		}
		for i := 0; i < nchildren; i++ {
			_, _, rtime, _, werr := k.Waitx(p)
			if werr != nil {
				t.Errorf("Waitx: %v", werr)
				return
			}
			rtimesCh <- rtime
		}
	})
	if err != nil {
		t.Fatalf("InitProc: %v", err)
	}

	for i := 0; i < nchildren; i++ {
		select {
		case rtime := <-rtimesCh:
			if rtime == 0 {
				t.Fatalf("a spinner was reaped with zero run time")
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for spinner %d to be reaped", i)
		}
	}
}

func TestRRSelectNextNoneRunnableReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.NPROC = 2
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := k.policy.selectNext(k, nil); got != nil {
		t.Fatalf("selectNext = %v, want nil", got)
	}
}
