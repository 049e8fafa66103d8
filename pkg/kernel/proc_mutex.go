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

// procMutex is the per-process-table-entry lock named throughout this
// package simply as "the entry's lock" or "self lock". It is a thin,
// named wrapper rather than a bare sync.Mutex so that every
// acquisition site reads as "lock this process".
//
// +checklocksignore
type procMutex struct {
	mu sync.Mutex
}

// Lock locks m.
func (m *procMutex) Lock() {
	m.mu.Lock()
}

// Unlock unlocks m.
func (m *procMutex) Unlock() {
	m.mu.Unlock()
}

// waitMutex orders fork/exit/wait/waitx reparenting against
// per-process locks. It is acquired strictly before any per-process
// lock when both are needed.
type waitMutex struct {
	mu sync.Mutex
}

func (m *waitMutex) Lock()   { m.mu.Lock() }
func (m *waitMutex) Unlock() { m.mu.Unlock() }

// pidMutex guards the monotone PID counter. It is a leaf lock: nothing
// is ever acquired while it is held.
type pidMutex struct {
	mu sync.Mutex
}

func (m *pidMutex) Lock()   { m.mu.Lock() }
func (m *pidMutex) Unlock() { m.mu.Unlock() }
