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

import "sync"

// mlfqPolicy is the multi-level feedback queue: MaxQ priority levels,
// each a FIFO; a process starts at level 0, is demoted one level
// whenever it exhausts the timeslice budget (1<<level ticks) of its
// current level, and is promoted one level if it has waited at the
// same level for cfg.AgeLimit ticks without running (anti-starvation
// aging).
//
// The queues are protected by one dedicated mutex covering all MaxQ
// levels together rather than by the entries' individual locks, since
// membership spans multiple entries at once and multiple CPUs age,
// enqueue and select concurrently.
type mlfqPolicy struct {
	qmu      sync.Mutex
	queues   [MaxQ]*mlfqRing
	ageLimit uint64
}

func newMLFQPolicy(k *Kernel) *mlfqPolicy {
	m := &mlfqPolicy{ageLimit: uint64(k.cfg.AgeLimit)}
	for i := range m.queues {
		m.queues[i] = newMLFQRing(len(k.proc) + 1)
	}
	return m
}

func (*mlfqPolicy) Name() string     { return "mlfq" }
func (*mlfqPolicy) Preemptive() bool { return false }

// onDispatch assigns the quantum budget for p's current level:
// 1<<pqIndex ticks, doubling at each lower level of favour.
func (*mlfqPolicy) onDispatch(k *Kernel, p *Process) {
	p.timeslices = 1 << uint(p.pqIndex)
	p.nrun++
}

// onDescheduled restarts p's wait clock: aging measures time since the
// process last came off a CPU, not since it was last picked.
func (*mlfqPolicy) onDescheduled(k *Kernel, p *Process) {
	p.qTicks = k.Ticks()
}

// demote moves p down one MLFQ level (capped at the lowest), called by
// the accounting ticker when p exhausts its timeslice budget while
// RUNNING.
//
// Precondition: p's lock is held.
func (m *mlfqPolicy) demote(k *Kernel, p *Process) {
	if p.pqIndex < MaxQ-1 {
		p.pqIndex++
	}
	p.qTicks = k.Ticks()
}

// ageing promotes any RUNNABLE entry that has waited at its current
// level for at least ageLimit ticks without being dispatched, pulling
// it out of its current queue (if it is presently sitting in one) and
// resetting its wait clock.
func (m *mlfqPolicy) ageing(k *Kernel) {
	now := k.Ticks()
	for _, p := range k.proc {
		p.mu.Lock()
		if p.state == StateRunnable && now-p.qTicks >= m.ageLimit {
			if p.inQueue {
				m.qmu.Lock()
				m.queues[p.pqIndex].deleteByPid(p)
				m.qmu.Unlock()
				p.inQueue = false
			}
			if p.pqIndex > 0 {
				p.pqIndex--
			}
			p.qTicks = now
		}
		p.mu.Unlock()
	}
}

// addNewProcs enqueues every RUNNABLE entry not currently sitting in
// any level's queue, at its own current level.
func (m *mlfqPolicy) addNewProcs(k *Kernel) {
	for _, p := range k.proc {
		p.mu.Lock()
		if p.state == StateRunnable && !p.inQueue {
			m.qmu.Lock()
			m.queues[p.pqIndex].enqueue(p)
			m.qmu.Unlock()
			p.inQueue = true
		}
		p.mu.Unlock()
	}
}

// getMinProc returns the head of the highest-favour non-empty queue
// whose head is still RUNNABLE, discarding stale entries (dequeued but
// no longer runnable, e.g. killed while queued) along the way.
func (m *mlfqPolicy) getMinProc(k *Kernel) *Process {
	for level := 0; level < MaxQ; level++ {
		for {
			m.qmu.Lock()
			p := m.queues[level].dequeueHead()
			m.qmu.Unlock()
			if p == nil {
				break
			}
			p.mu.Lock()
			p.inQueue = false
			runnable := p.state == StateRunnable
			if runnable {
				p.qTicks = k.Ticks()
			}
			p.mu.Unlock()
			if runnable {
				return p
			}
		}
	}
	return nil
}

func (m *mlfqPolicy) selectNext(k *Kernel, cpu *CPU) *Process {
	m.ageing(k)
	m.addNewProcs(k)
	return m.getMinProc(k)
}
