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

	"github.com/minikernel/xkernel/pkg/config"
)

func TestRecomputePBSDefaultNicenessWhenNeverRun(t *testing.T) {
	p := &Process{staticPriority: 60}
	p.recomputePBS()
	if p.niceness != defaultNiceness {
		t.Fatalf("niceness = %d, want %d", p.niceness, defaultNiceness)
	}
	if p.priority != 60 {
		t.Fatalf("priority = %d, want 60 (60 - 5 + 5)", p.priority)
	}
}

func TestRecomputePBSWaitHeavyLowersPriorityNumber(t *testing.T) {
	// Waited 90 ticks, ran 10: niceness = (90*10)/(10+90) = 9.
	p := &Process{staticPriority: 60, rtime: 10, schedStart: 0, schedEnd: 100}
	p.recomputePBS()
	if p.niceness != 9 {
		t.Fatalf("niceness = %d, want 9", p.niceness)
	}
	want := 60 - 9 + 5
	if p.priority != want {
		t.Fatalf("priority = %d, want %d", p.priority, want)
	}
}

func TestPBSOnDispatchResetsRuntimeMeasurement(t *testing.T) {
	cfg := config.Default()
	cfg.Policy = config.PolicyPBS
	cfg.NPROC = 1
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := k.proc[0]
	p.rtime = 17
	p.nrun = 2

	k.policy.onDispatch(k, p)
	if p.rtime != 0 {
		t.Fatalf("rtime = %d after dispatch, want 0", p.rtime)
	}
	if p.nrun != 3 {
		t.Fatalf("nrun = %d after dispatch, want 3", p.nrun)
	}
	if p.schedStart != k.Ticks() {
		t.Fatalf("schedStart = %d, want current tick %d", p.schedStart, k.Ticks())
	}
}

func TestRecomputePBSClampsToRange(t *testing.T) {
	// static=100, no wait time at all (wtime=0 -> niceness=0): 100-0+5=105
	// must clamp down to 100.
	hog := &Process{staticPriority: 100, rtime: 100, schedStart: 0, schedEnd: 100}
	hog.recomputePBS()
	if hog.priority != 100 {
		t.Fatalf("priority = %d, want clamp to 100", hog.priority)
	}

	// static=0, heavily wait-bound (niceness=9, the max reachable since
	// rtime>0): 0-9+5=-4 must clamp up to 0.
	idle := &Process{staticPriority: 0, rtime: 1, schedStart: 0, schedEnd: 1000}
	idle.recomputePBS()
	if idle.priority != 0 {
		t.Fatalf("priority = %d, want clamp to 0", idle.priority)
	}
}

func TestPBSSelectNextPicksLowestPriorityNumber(t *testing.T) {
	cfg := config.Default()
	cfg.Policy = config.PolicyPBS
	cfg.NPROC = 3
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	favored, middling, laggard := k.proc[0], k.proc[1], k.proc[2]
	favored.state, favored.staticPriority = StateRunnable, 40
	middling.state, middling.staticPriority = StateRunnable, 60
	laggard.state, laggard.staticPriority = StateRunnable, 80

	got := k.policy.selectNext(k, nil)
	if got != favored {
		t.Fatalf("selectNext picked pid-index %v, want the static_priority=40 entry", got)
	}
}

func TestPBSSelectNextTieBreaksByNrunThenCtime(t *testing.T) {
	cfg := config.Default()
	cfg.Policy = config.PolicyPBS
	cfg.NPROC = 2
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	older, newer := k.proc[0], k.proc[1]
	older.state, older.staticPriority, older.nrun, older.ctime = StateRunnable, 60, 3, 10
	newer.state, newer.staticPriority, newer.nrun, newer.ctime = StateRunnable, 60, 3, 20

	// Equal priority and nrun: earlier ctime wins.
	if got := k.policy.selectNext(k, nil); got != older {
		t.Fatalf("selectNext did not prefer the earlier ctime on a full tie")
	}

	// Equal priority, unequal nrun: the more-scheduled entry wins.
	newer.nrun = 5
	if got := k.policy.selectNext(k, nil); got != newer {
		t.Fatalf("selectNext did not prefer the greater nrun")
	}
}

func TestPBSSelectNextSkipsNonRunnable(t *testing.T) {
	cfg := config.Default()
	cfg.Policy = config.PolicyPBS
	cfg.NPROC = 2
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k.proc[0].state = StateSleeping
	k.proc[1].state = StateRunnable
	k.proc[1].staticPriority = 90

	got := k.policy.selectNext(k, nil)
	if got != k.proc[1] {
		t.Fatalf("selectNext returned a non-runnable or nil entry")
	}
}
