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

import "github.com/minikernel/xkernel/pkg/config"

// Policy selects which RUNNABLE process a CPU should dispatch next.
// Exactly one Policy is active for the lifetime of a booted Kernel: it
// is chosen once in New and never switched at runtime.
//
// selectNext is called by the per-CPU loop with no process lock held;
// its candidate, once chosen, is (re-)locked and re-checked by
// (*CPU).dispatch before use. A Policy implementation may take its own
// internal lock (as mlfqPolicy does) inside selectNext. The two dispatch
// hooks are called by dispatch with the dispatched process's lock held.
type Policy interface {
	// Name identifies the policy, for logging and procdump headers.
	Name() string

	// Preemptive reports whether the accounting ticker should request
	// the running process yield on every tick (RR, PBS) as opposed to
	// only on quantum exhaustion (MLFQ) or never (FCFS).
	Preemptive() bool

	// selectNext picks the next process cpu should try to dispatch, or
	// nil if none is presently runnable.
	selectNext(k *Kernel, cpu *CPU) *Process

	// onDispatch runs with p's lock held, immediately after p is marked
	// RUNNING, for policy bookkeeping that must happen at dispatch time
	// (PBS's sched_start and nrun, MLFQ's timeslice budget and nrun).
	onDispatch(k *Kernel, p *Process)

	// onDescheduled runs with p's lock held, immediately after a
	// dispatched p returns control to its CPU, for policy bookkeeping
	// that must happen at that point (PBS's sched_end, MLFQ's wait clock).
	onDescheduled(k *Kernel, p *Process)
}

// newPolicy constructs the Policy named by name.
func newPolicy(name config.Policy, k *Kernel) Policy {
	switch name {
	case config.PolicyFCFS:
		return &fcfsPolicy{}
	case config.PolicyPBS:
		return &pbsPolicy{}
	case config.PolicyMLFQ:
		return newMLFQPolicy(k)
	default:
		return &rrPolicy{}
	}
}
