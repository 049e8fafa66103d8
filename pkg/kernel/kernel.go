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
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/minikernel/xkernel/pkg/config"
)

// Errors returned by the lifecycle operations. Resource exhaustion,
// bad arguments and the no-child case are ordinary returned errors;
// invariant violations panic instead.
var (
	ErrNoFreeSlot = errors.New("kernel: no free process slot")
	ErrNoChild    = errors.New("kernel: no children")
	ErrNoSuchPid  = errors.New("kernel: no such pid")
	ErrBadPrio    = errors.New("kernel: priority out of range")
	ErrKilled     = errors.New("kernel: process killed")
)

// Kernel is the process-wide state a single booted instance of this
// subsystem owns: the process table, the PID counter, the global
// ordering lock, initproc, the CPU set and the active scheduling
// policy. All of it lives in one value constructed at boot rather
// than in package globals.
type Kernel struct {
	cfg *config.Config
	log *logrus.Logger

	proc []*Process

	pidMu   pidMutex
	nextpid int

	waitMu    waitMutex
	initproc  *Process
	firstBoot sync.Once

	ticks int64
	// tickGen is closed and replaced every tick; goroutines waiting for
	// the next tick select on the current generation's channel.
	tickMu  sync.Mutex
	tickGen chan struct{}

	cpus   []*CPU
	policy Policy

	// forceAllocFail simulates the physical page allocator refusing a
	// request, exercised by tests of allocproc's rollback path.
	forceAllocFail int32
}

// New constructs a Kernel from cfg. It does not start any CPU or the
// accounting ticker; call Boot for that.
func New(cfg *config.Config, log *logrus.Logger) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	k := &Kernel{
		cfg:     cfg,
		log:     log,
		proc:    make([]*Process, cfg.NPROC),
		nextpid: 1,
		tickGen: make(chan struct{}),
	}
	for i := range k.proc {
		k.proc[i] = &Process{}
	}
	k.policy = newPolicy(cfg.Policy, k)
	k.cpus = make([]*CPU, cfg.NCPU)
	for i := range k.cpus {
		k.cpus[i] = &CPU{id: i}
	}
	return k, nil
}

// Config returns the kernel's immutable boot-time configuration.
func (k *Kernel) Config() *config.Config { return k.cfg }

// Ticks returns the current tick count.
func (k *Kernel) Ticks() uint64 { return uint64(atomic.LoadInt64(&k.ticks)) }

// allocpid returns strictly increasing positive integers. PIDs are
// never recycled.
func (k *Kernel) allocpid() int {
	k.pidMu.Lock()
	defer k.pidMu.Unlock()
	pid := k.nextpid
	k.nextpid++
	return pid
}

// lowMemory reports whether the next VM allocation should simulate
// exhaustion, for exercising allocproc's rollback path.
func (k *Kernel) lowMemory() bool {
	return atomic.LoadInt32(&k.forceAllocFail) != 0
}

// SetSimulateOutOfMemory toggles whether allocproc calls observe a VM
// allocation failure; the setting stays in effect until toggled again.
// Test-only knob.
func (k *Kernel) SetSimulateOutOfMemory(b bool) {
	v := int32(0)
	if b {
		v = 1
	}
	atomic.StoreInt32(&k.forceAllocFail, v)
}

// InitProc bootstraps the first process: allocproc, attach a workload,
// mark it RUNNABLE and record it as initproc, the adoptive parent of
// every later orphan.
func (k *Kernel) InitProc(name string, workload Workload) (*Process, error) {
	p, err := k.allocproc()
	if err != nil {
		return nil, err
	}
	p.name = name
	p.workload = workload
	p.state = StateRunnable
	p.mu.Unlock()

	go p.run(k)

	k.waitMu.Lock()
	k.initproc = p
	k.waitMu.Unlock()
	return p, nil
}

// Boot starts cfg.NCPU scheduler-loop goroutines and the accounting
// ticker, and blocks until ctx is cancelled, at which point all CPUs
// stop cleanly.
func (k *Kernel) Boot(ctx context.Context) error {
	k.log.WithFields(logrus.Fields{
		"policy": k.policy.Name(),
		"ncpu":   len(k.cpus),
		"nproc":  len(k.proc),
	}).Info("kernel booting")

	g, ctx := errgroup.WithContext(ctx)
	for _, cpu := range k.cpus {
		cpu := cpu
		g.Go(func() error {
			cpu.loop(ctx, k)
			return nil
		})
	}
	g.Go(func() error {
		k.tickerLoop(ctx)
		return nil
	})
	return g.Wait()
}
