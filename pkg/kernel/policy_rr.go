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

// rrPolicy is the default round-robin scheduler: the process table is
// scanned in a circular order, one slot at a time, and the first
// RUNNABLE entry found is dispatched. Because the scan resumes from the
// slot after the one last dispatched rather than restarting at index 0
// every time, every runnable process gets a turn before any one of them
// gets a second, which is what makes the policy round-robin rather than
// merely "scan from the top".
type rrPolicy struct {
	mu   sync.Mutex
	next int
}

func (*rrPolicy) Name() string                    { return "rr" }
func (*rrPolicy) Preemptive() bool                { return true }
func (*rrPolicy) onDispatch(*Kernel, *Process)    {}
func (*rrPolicy) onDescheduled(*Kernel, *Process) {}

func (r *rrPolicy) selectNext(k *Kernel, cpu *CPU) *Process {
	n := len(k.proc)
	r.mu.Lock()
	start := r.next
	r.mu.Unlock()

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		p := k.proc[idx]
		p.mu.Lock()
		runnable := p.state == StateRunnable
		p.mu.Unlock()
		if runnable {
			r.mu.Lock()
			r.next = (idx + 1) % n
			r.mu.Unlock()
			return p
		}
	}
	return nil
}
