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

import "unsafe"

// Fork creates a child of parent running workload, copying the
// parent's address space and trap frame and inheriting its syscall
// trace mask. The child's return-value register is cleared, which is
// how the child side of fork observes 0. The child is returned
// RUNNABLE; it does not begin executing workload until a CPU
// dispatches it.
//
// The child's own lock is dropped before waitMu is acquired to attach
// the parent link, and waitMu is dropped before the child's lock is
// retaken to flip it RUNNABLE. waitMu is never nested inside a process
// lock, only the reverse.
func (k *Kernel) Fork(parent *Process, name string, workload Workload) (*Process, error) {
	child, err := k.allocproc()
	if err != nil {
		return nil, err
	}

	parent.mu.Lock()
	pt := parent.pageTable.Copy()
	tf := *parent.trapFrame
	mask := parent.mask
	parent.mu.Unlock()

	child.pageTable.Free()
	child.pageTable = pt
	*child.trapFrame = tf
	child.trapFrame.A0 = 0
	child.mask = mask
	child.name = name
	child.workload = workload
	child.mu.Unlock()

	k.waitMu.Lock()
	child.parent = parent
	k.waitMu.Unlock()

	child.mu.Lock()
	child.state = StateRunnable
	child.mu.Unlock()

	go child.run(k)
	return child, nil
}

// reparent reassigns every child of p to the kernel's initproc and
// wakes initproc once per reassignment, so a waiting initproc notices
// each newly inherited zombie in turn.
//
// Precondition: waitMu is held.
func (k *Kernel) reparent(p *Process) {
	for _, c := range k.proc {
		c.mu.Lock()
		isChild := c.parent == p
		c.mu.Unlock()
		if !isChild {
			continue
		}
		c.mu.Lock()
		c.parent = k.initproc
		c.mu.Unlock()
		k.Wakeup(uintptr(unsafe.Pointer(k.initproc)), nil)
	}
}

// Exit terminates the calling process with the given exit status. It
// never returns to its caller: the process parks in sched as a ZOMBIE
// and stays there until a waiter reaps the slot, so reaching the end
// of Exit is a fatal invariant violation.
func (k *Kernel) Exit(p *Process, status int) {
	k.waitMu.Lock()
	k.reparent(p)
	k.Wakeup(uintptr(unsafe.Pointer(p.parent)), nil)

	p.mu.Lock()
	p.xstate = status
	p.state = StateZombie
	p.etime = k.Ticks()
	k.waitMu.Unlock()

	k.sched(p)
	panic("kernel: Exit returned")
}

// Wait blocks until one of p's children exits, frees that child's
// table slot, and returns its pid and exit status. It returns
// ErrNoChild immediately if p has no children at all.
func (k *Kernel) Wait(p *Process) (pid int, status int, err error) {
	pid, status, _, _, err = k.waitx(p)
	return pid, status, err
}

// Waitx behaves like Wait but additionally reports the reaped child's
// total scheduled runtime and total wait time across its life.
func (k *Kernel) Waitx(p *Process) (pid int, status int, rtime uint64, wtime uint64, err error) {
	return k.waitx(p)
}

func (k *Kernel) waitx(p *Process) (pid int, status int, rtime uint64, wtime uint64, err error) {
	k.waitMu.Lock()
	for {
		haveChild := false
		for _, c := range k.proc {
			c.mu.Lock()
			if c.parent != p {
				c.mu.Unlock()
				continue
			}
			haveChild = true
			if c.state == StateZombie {
				pid = c.pid
				status = c.xstate
				rtime = c.totalRtime
				wtime = c.etime - c.ctime - c.totalRtime
				k.freeproc(c)
				c.mu.Unlock()
				k.waitMu.Unlock()
				return pid, status, rtime, wtime, nil
			}
			c.mu.Unlock()
		}

		if !haveChild || p.Killed() {
			k.waitMu.Unlock()
			return 0, 0, 0, 0, ErrNoChild
		}

		k.Sleep(p, uintptr(unsafe.Pointer(p)), &k.waitMu)
	}
}

// Kill requests termination of the process with the given pid: it sets
// the killed flag and, if the target is SLEEPING, wakes it so it
// notices the request promptly. Termination is cooperative; the victim
// exits on its own at its next checkpoint. Returns ErrNoSuchPid if no
// entry with that pid exists.
func (k *Kernel) Kill(pid int) error {
	for _, p := range k.proc {
		p.mu.Lock()
		if p.pid == pid && p.state != StateUnused {
			p.killed = true
			if p.state == StateSleeping {
				p.state = StateRunnable
			}
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()
	}
	return ErrNoSuchPid
}

// SetPriority sets pid's static priority, resetting its niceness to
// the neutral default, and returns the priority it previously had. If
// the new priority is numerically greater than the old one (less
// favoured), the caller yields so a now more-favoured process gets a
// chance to run immediately. Lowering the number does not yield.
func (k *Kernel) SetPriority(caller *Process, priority, pid int) (old int, err error) {
	if priority < 0 || priority > 100 {
		return 0, ErrBadPrio
	}
	var target *Process
	for _, p := range k.proc {
		p.mu.Lock()
		if p.pid == pid && p.state != StateUnused {
			old = p.staticPriority
			p.staticPriority = priority
			p.niceness = defaultNiceness
			target = p
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()
	}
	if target == nil {
		return 0, ErrNoSuchPid
	}
	if old < priority && caller != nil {
		k.Yield(caller)
	}
	return old, nil
}

// Trace sets p's syscall trace bitmask. It is written without p's
// lock: the mask is only ever touched by the CPU currently executing
// p.
func (p *Process) Trace(mask uint64) {
	p.mask = mask
}
