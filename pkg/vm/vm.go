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

// Package vm stands in for the virtual-memory collaborator that the
// scheduling subsystem only references by interface: trap frame and user
// page table allocation, and the copy-on-fork of a process's address
// space. The real collaborator (page-table construction, copy-in/out) is
// out of scope for this subsystem; this package exists so allocproc/fork
// have something concrete to allocate, copy and free.
package vm

import "errors"

// ErrOutOfMemory is returned by New when the simulated physical page
// allocator (out of scope for this subsystem) cannot satisfy a request.
var ErrOutOfMemory = errors.New("vm: out of memory")

// TrapFrame stands in for the per-process trap frame page. Only the
// fields the scheduling subsystem actually touches are modeled: the
// architectural return-value register, which fork clears to 0 in the
// child.
type TrapFrame struct {
	A0 uint64
}

// PageTable stands in for a process's user address space.
type PageTable struct {
	entries map[uintptr]uintptr
}

// New allocates a trap frame and an empty user page table for a freshly
// claimed process slot. Returns ErrOutOfMemory to let allocproc exercise
// its rollback-via-freeproc path.
func New(lowMemory bool) (*TrapFrame, *PageTable, error) {
	if lowMemory {
		return nil, nil, ErrOutOfMemory
	}
	return &TrapFrame{}, &PageTable{entries: make(map[uintptr]uintptr)}, nil
}

// Copy duplicates the address space for fork. A nil receiver (freed
// page table) yields a nil copy.
func (p *PageTable) Copy() *PageTable {
	if p == nil {
		return nil
	}
	cp := &PageTable{entries: make(map[uintptr]uintptr, len(p.entries))}
	for k, v := range p.entries {
		cp.entries[k] = v
	}
	return cp
}

// Free releases the page table. Idempotent.
func (p *PageTable) Free() {
	if p == nil {
		return
	}
	p.entries = nil
}
