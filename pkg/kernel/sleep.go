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

// Sleep atomically releases lk and blocks p on chanKey until a
// matching Wakeup (or Kill) makes it RUNNABLE again.
//
// The ordering that prevents a lost wakeup: p's own lock is taken, and
// the state/chan change committed, before lk is released, so any
// concurrent Wakeup either observes the not-yet-SLEEPING process
// (harmless, the sleeper still holds the lock protecting the
// condition) or observes SLEEPING and flips it.
//
// Sleep hands off to the scheduler through sched, which releases p's
// lock only for the duration of the blocking handoff; holding a mutex
// across the channel operation would stall every other accessor of the
// entry. Wakeup and Sleep still serialize through p.mu around the same
// fields, so no wakeup can be lost.
func (k *Kernel) Sleep(p *Process, chanKey uintptr, lk sync.Locker) {
	p.mu.Lock()
	if lk != nil {
		lk.Unlock()
	}
	p.sleepOn = chanKey
	p.state = StateSleeping
	k.sched(p)
	p.sleepOn = 0
	p.mu.Unlock()

	if lk != nil {
		lk.Lock()
	}
}

// Wakeup makes every entry other than except that is SLEEPING on
// chanKey RUNNABLE again. No waiter is required to exist.
func (k *Kernel) Wakeup(chanKey uintptr, except *Process) {
	for _, p := range k.proc {
		if p == except {
			continue
		}
		p.mu.Lock()
		if p.state == StateSleeping && p.sleepOn == chanKey {
			p.state = StateRunnable
		}
		p.mu.Unlock()
	}
}
