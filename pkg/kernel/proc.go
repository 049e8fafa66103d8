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
	"github.com/minikernel/xkernel/pkg/vm"
)

// MaxQ is the number of MLFQ priority levels.
const MaxQ = 5

// defaultStaticPriority and defaultNiceness are the PBS values a
// freshly allocated process starts with.
const (
	defaultStaticPriority = 60
	defaultNiceness       = 5
)

// Workload is the body a process runs once dispatched for the first
// time. It stands in for "returning to user space": it runs on the
// process's own goroutine and drives the scheduling subsystem purely
// through Kernel methods (Yield, Sleep, RunTicks, Exit). A Workload
// that returns without calling Exit is implicitly exited with status 0,
// mirroring a user program falling off the end of main.
type Workload func(k *Kernel, p *Process)

// Process is one process-table slot. All mutable fields below are read
// or written only while mu is held, except by the process's own
// goroutine while it is StateRunning, which owns the entry implicitly.
type Process struct {
	mu procMutex

	state   State
	pid     int
	parent  *Process
	sleepOn uintptr // opaque sleep-channel identity; 0 if not sleeping
	killed  bool
	xstate  int
	ctime   uint64
	etime   uint64

	totalRtime uint64
	mask       uint64 // syscall trace bitmask

	// PBS fields.
	staticPriority int
	niceness       int
	priority       int
	nrun           int
	rtime          uint64
	schedStart     uint64
	schedEnd       uint64

	// MLFQ fields.
	pqIndex    int
	inQueue    bool
	qTicks     uint64
	timeslices int
	pqWtime    [MaxQ]uint64

	name string

	trapFrame *vm.TrapFrame
	pageTable *vm.PageTable

	workload Workload
	resumeCh chan struct{}
	pauseCh  chan struct{}

	cpu *CPU

	// preempt is set by the accounting ticker when the active policy
	// wants this running process to give up the CPU at its next
	// cooperative checkpoint.
	preempt bool
}

// Pid returns p's process ID, read without p's lock. pid is set in
// allocproc and reset to 0 by freeproc when the slot is reaped, so once
// a Wait has reaped p, Pid returns 0.
func (p *Process) Pid() int { return p.pid }

// Name returns p's process name, set at fork/userinit time.
func (p *Process) Name() string { return p.name }

// Killed reports whether a termination has been requested for p.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// State returns p's current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// allocproc scans the process table in index order for an UNUSED slot.
// On success it returns the claimed entry with its
// lock still held, for the caller to finish initializing. On failure
// (table full, or the VM collaborator is out of memory) it returns nil
// with no lock held.
func (k *Kernel) allocproc() (*Process, error) {
	for i := range k.proc {
		p := k.proc[i]
		p.mu.Lock()
		if p.state != StateUnused {
			p.mu.Unlock()
			continue
		}

		p.pid = k.allocpid()
		p.state = StateUsed
		p.ctime = k.Ticks()
		p.etime = 0
		p.killed = false
		p.xstate = 0
		p.totalRtime = 0
		p.mask = 0
		p.staticPriority = defaultStaticPriority
		p.niceness = defaultNiceness
		p.priority = defaultStaticPriority
		p.nrun = 0
		p.rtime = 0
		p.schedStart = 0
		p.schedEnd = 0
		p.pqIndex = 0
		p.inQueue = false
		p.qTicks = 0
		p.timeslices = 0
		p.pqWtime = [MaxQ]uint64{}
		p.parent = nil
		p.name = ""
		p.workload = nil
		p.preempt = false
		p.resumeCh = make(chan struct{})
		p.pauseCh = make(chan struct{})

		tf, pt, err := vm.New(k.lowMemory())
		if err != nil {
			k.freeproc(p)
			p.mu.Unlock()
			return nil, err
		}
		p.trapFrame = tf
		p.pageTable = pt

		return p, nil
	}
	return nil, ErrNoFreeSlot
}

// freeproc releases p's VM resources and clears it back to UNUSED.
// A slot is freed exactly once; freeing an UNUSED slot is a bug.
//
// Precondition: p's lock is held.
func (k *Kernel) freeproc(p *Process) {
	if p.state == StateUnused {
		panic("kernel: freeproc of an unused slot")
	}
	if p.pageTable != nil {
		p.pageTable.Free()
	}
	p.trapFrame = nil
	p.pageTable = nil
	p.pid = 0
	p.parent = nil
	p.name = ""
	p.killed = false
	p.xstate = 0
	p.ctime = 0
	p.etime = 0
	p.sleepOn = 0
	p.workload = nil
	p.state = StateUnused
}
