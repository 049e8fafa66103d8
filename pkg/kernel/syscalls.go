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

// The user-visible syscall surface, each entry a thin wrapper a
// Workload calls on its own behalf. They exist separately from the
// internal Kernel methods of lifecycle.go/sleep.go/tick.go so a
// Workload's code reads the way a user-space caller's does: Getpid(),
// not some lower-level field poke.

// Getpid returns the calling process's own pid.
func (k *Kernel) Getpid(p *Process) int { return p.Pid() }

// SleepTicks blocks the calling process, SLEEPING on the tick channel,
// until n timer ticks have elapsed. It is the user-visible sleep(n)
// syscall, distinct from the internal channel-based Sleep it is built
// on. Returns ErrKilled, with fewer ticks elapsed than requested, if
// the process is killed while sleeping.
func (k *Kernel) SleepTicks(p *Process, n int) error {
	k.tickMu.Lock()
	start := k.Ticks()
	for k.Ticks()-start < uint64(n) {
		if p.Killed() {
			k.tickMu.Unlock()
			return ErrKilled
		}
		k.Sleep(p, k.tickChan(), &k.tickMu)
	}
	k.tickMu.Unlock()
	return nil
}

// TraceSyscall sets p's own syscall trace mask, the external entry
// point for the bitmask (*Process).Trace exposes internally.
func (k *Kernel) TraceSyscall(p *Process, mask uint64) {
	p.Trace(mask)
}
