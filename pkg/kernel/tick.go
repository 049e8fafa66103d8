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
	"context"
	"sync/atomic"
	"time"
	"unsafe"
)

// tickerLoop drives the timer interrupt: every cfg.TickPeriod it calls
// Tick once and wakes anyone blocked in awaitNextTick.
func (k *Kernel) tickerLoop(ctx context.Context) {
	t := time.NewTicker(k.cfg.TickPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			k.Tick()
		}
	}
}

// Tick is the accounting ticker, invoked on every timer tick for every
// entry under the entry's lock: it charges run time, decrements MLFQ
// timeslice budgets, and flags processes the active policy wants
// preempted. It is exported so tests can step the clock
// deterministically instead of depending on TickPeriod's wall-clock
// cadence.
func (k *Kernel) Tick() {
	atomic.AddInt64(&k.ticks, 1)

	preemptive := k.policy.Preemptive()
	mlfq, isMLFQ := k.policy.(*mlfqPolicy)

	for _, p := range k.proc {
		p.mu.Lock()
		if p.state == StateRunning {
			p.totalRtime++
			if _, isPBS := k.policy.(*pbsPolicy); isPBS {
				p.rtime++
			}
			if isMLFQ {
				p.timeslices--
				p.pqWtime[p.pqIndex]++
				if p.timeslices <= 0 {
					// Demote once per exhausted quantum, even if more
					// ticks land before the process reaches its next
					// checkpoint and yields.
					if !p.preempt {
						mlfq.demote(k, p)
					}
					p.preempt = true
				}
			} else if preemptive {
				// RR and PBS re-evaluate their pick every tick: the
				// ticker yields the running process unconditionally.
				p.preempt = true
			}
		}
		p.mu.Unlock()
	}

	k.tickMu.Lock()
	close(k.tickGen)
	k.tickGen = make(chan struct{})
	// Wake tick sleepers under tickMu, so a SleepTicks caller that
	// checked the count under tickMu cannot fall asleep between this
	// wakeup and its own commit to SLEEPING.
	k.Wakeup(k.tickChan(), nil)
	k.tickMu.Unlock()
}

// tickChan is the rendezvous identity tick sleepers block on. Any
// stable address works; the tick counter's own is the natural one.
func (k *Kernel) tickChan() uintptr {
	return uintptr(unsafe.Pointer(&k.ticks))
}

// awaitNextTick blocks until at least one more tick has elapsed since
// last, returning the new tick count.
func (k *Kernel) awaitNextTick(last uint64) uint64 {
	for {
		cur := k.Ticks()
		if cur > last {
			return cur
		}
		k.tickMu.Lock()
		gen := k.tickGen
		k.tickMu.Unlock()
		<-gen
	}
}

// shouldPreempt reports and clears p's pending preemption request.
//
// Precondition: p's lock is held.
func (p *Process) shouldPreempt() bool {
	v := p.preempt
	p.preempt = false
	return v
}

// RunTicks simulates a CPU-bound workload running for n simulated
// ticks, cooperatively checking at each tick boundary whether the
// accounting ticker has asked this process to yield, the way a timer
// trap would preempt a running process. It returns early if p is
// killed.
func (k *Kernel) RunTicks(p *Process, n int) {
	last := k.Ticks()
	for i := 0; i < n; i++ {
		last = k.awaitNextTick(last)

		p.mu.Lock()
		preempt := p.shouldPreempt()
		killed := p.killed
		p.mu.Unlock()

		if killed {
			return
		}
		if preempt {
			k.Yield(p)
		}
	}
}
