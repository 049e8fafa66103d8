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

// pbsPolicy is the priority-based scheduler: every
// scheduling pass recomputes each runnable process's dynamic priority
// from its static priority and recent CPU/wait behaviour, then
// dispatches the lowest dynamic-priority number (0 is most favoured,
// 100 least), breaking ties first by the greater scheduled count and
// then by the earlier creation time.
type pbsPolicy struct{}

func (*pbsPolicy) Name() string     { return "pbs" }
func (*pbsPolicy) Preemptive() bool { return true }

// onDispatch records when this quantum started, for the wait-time
// component of the next dynamic-priority recompute, counts the
// dispatch for tie-breaking, and starts a fresh run-time measurement.
func (*pbsPolicy) onDispatch(k *Kernel, p *Process) {
	p.schedStart = k.Ticks()
	p.nrun++
	p.rtime = 0
}

// onDescheduled records when this quantum ended.
func (*pbsPolicy) onDescheduled(k *Kernel, p *Process) {
	p.schedEnd = k.Ticks()
}

// recomputePBS derives p's niceness and dynamic priority from the
// ratio of time spent waiting to time spent running over its last
// scheduled interval: a process that waited more than it ran is judged
// more I/O-bound and rewarded with a lower (more favourable) niceness.
//
// Precondition: p's lock is held.
func (p *Process) recomputePBS() {
	if p.rtime == 0 {
		p.niceness = defaultNiceness
	} else {
		wtime := p.schedEnd - p.schedStart - p.rtime
		p.niceness = int((wtime * 10) / (p.rtime + wtime))
	}
	prio := p.staticPriority - p.niceness + 5
	if prio < 0 {
		prio = 0
	}
	if prio > 100 {
		prio = 100
	}
	p.priority = prio
}

func (*pbsPolicy) selectNext(k *Kernel, cpu *CPU) *Process {
	var best *Process
	var bestPrio, bestNrun int
	var bestCtime uint64

	for _, p := range k.proc {
		p.mu.Lock()
		if p.state != StateRunnable {
			p.mu.Unlock()
			continue
		}
		p.recomputePBS()
		switch {
		case best == nil,
			p.priority < bestPrio,
			p.priority == bestPrio && p.nrun > bestNrun,
			p.priority == bestPrio && p.nrun == bestNrun && p.ctime < bestCtime:
			best, bestPrio, bestNrun, bestCtime = p, p.priority, p.nrun, p.ctime
		}
		p.mu.Unlock()
	}
	return best
}
