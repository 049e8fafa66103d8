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

// Package kernel implements the process table, lifecycle state machine,
// sleep/wakeup rendezvous, accounting ticker and the four selectable
// scheduling policies described for this subsystem.
package kernel

// State is the lifecycle state of a process table entry.
type State int

// The process lifecycle states, declared in the order of procdump's
// state-name table. The state machine runs
// UNUSED -> USED -> RUNNABLE <-> RUNNING / SLEEPING -> ZOMBIE.
const (
	StateUnused State = iota
	StateUsed
	StateSleeping
	StateRunnable
	StateRunning
	StateZombie
)

// procStateNames is the short column text procdump prints for each
// state.
var procStateNames = [...]string{
	StateUnused:   "unused",
	StateUsed:     "used",
	StateSleeping: "sleep",
	StateRunnable: "runble",
	StateRunning:  "run",
	StateZombie:   "zombie",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if int(s) < len(procStateNames) && procStateNames[s] != "" {
		return procStateNames[s]
	}
	return "???"
}
