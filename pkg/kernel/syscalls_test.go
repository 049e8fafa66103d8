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
	"errors"
	"testing"
	"time"
)

// TestSleepTicksBlocksForRequestedTicks: the sleeping process stays off
// the CPU until at least n ticks have elapsed, then resumes.
func TestSleepTicksBlocksForRequestedTicks(t *testing.T) {
	k := bootTestKernel(t, testConfig("rr"))

	type result struct {
		elapsed uint64
		err     error
	}
	resultCh := make(chan result, 1)

	_, err := k.InitProc("init", func(k *Kernel, p *Process) {
		start := k.Ticks()
		serr := k.SleepTicks(p, 3)
		resultCh <- result{elapsed: k.Ticks() - start, err: serr}
	})
	if err != nil {
		t.Fatalf("InitProc: %v", err)
	}

	select {
	case r := <-resultCh:
		if r.err != nil {
			t.Fatalf("SleepTicks: %v", r.err)
		}
		if r.elapsed < 3 {
			t.Fatalf("SleepTicks(3) returned after %d ticks", r.elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SleepTicks to return")
	}
}

// TestSleepTicksKilledReturnsErrKilled: killing a tick sleeper wakes it
// early and SleepTicks reports the kill instead of finishing the nap.
func TestSleepTicksKilledReturnsErrKilled(t *testing.T) {
	k := bootTestKernel(t, testConfig("rr"))

	pidCh := make(chan int, 1)
	errCh := make(chan error, 1)
	_, err := k.InitProc("init", func(k *Kernel, p *Process) {
		pidCh <- p.Pid()
		errCh <- k.SleepTicks(p, 1<<30)
	})
	if err != nil {
		t.Fatalf("InitProc: %v", err)
	}

	var pid int
	select {
	case pid = <-pidCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sleeper pid")
	}

	// Let the sleeper actually commit to SLEEPING before the kill.
	time.Sleep(20 * time.Millisecond)
	if err := k.Kill(pid); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	select {
	case serr := <-errCh:
		if !errors.Is(serr, ErrKilled) {
			t.Fatalf("SleepTicks on a killed process = %v, want ErrKilled", serr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for killed sleeper to return")
	}
}

// TestGetpidMatchesProcessPid is a thin sanity check of the syscall
// wrapper surface.
func TestGetpidMatchesProcessPid(t *testing.T) {
	k := newUnbootedTestKernel(t, 1)
	p, err := k.allocproc()
	if err != nil {
		t.Fatalf("allocproc: %v", err)
	}
	p.mu.Unlock()

	if got := k.Getpid(p); got != p.Pid() {
		t.Fatalf("Getpid = %d, want %d", got, p.Pid())
	}

	k.TraceSyscall(p, 0b1010)
	if p.mask != 0b1010 {
		t.Fatalf("TraceSyscall did not set the mask: %b", p.mask)
	}
}
