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
	"fmt"
	"io"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
)

// Procdump writes a snapshot of every non-UNUSED process table entry
// to w, in the column layout appropriate to the active policy: the
// plain pid/state/name table for RR and FCFS, the priority/accounting
// table for PBS, and for MLFQ the queue-level table with the ticks
// spent running at each level.
func (k *Kernel) Procdump(w io.Writer) {
	table := tablewriter.NewWriter(w)

	switch k.policy.(type) {
	case *pbsPolicy:
		table.SetHeader([]string{"pid", "priority", "state", "rtime", "wtime", "nrun"})
		now := k.Ticks()
		for _, p := range k.proc {
			p.mu.Lock()
			if p.state != StateUnused {
				// Still-live entries have no etime yet; measure their
				// wait against the current tick instead.
				end := p.etime
				if end == 0 {
					end = now
				}
				var wtime uint64
				if end > p.ctime+p.totalRtime {
					wtime = end - p.ctime - p.totalRtime
				}
				table.Append([]string{
					strconv.Itoa(p.pid), strconv.Itoa(p.priority), p.state.String(),
					strconv.FormatUint(p.totalRtime, 10), strconv.FormatUint(wtime, 10),
					strconv.Itoa(p.nrun),
				})
			}
			p.mu.Unlock()
		}

	case *mlfqPolicy:
		table.SetHeader([]string{"pid", "queue", "state", "rtime", "wait", "nrun", "q0", "q1", "q2", "q3", "q4"})
		for _, p := range k.proc {
			p.mu.Lock()
			if p.state != StateUnused {
				row := []string{
					strconv.Itoa(p.pid), strconv.Itoa(p.pqIndex), p.state.String(),
					strconv.FormatUint(p.totalRtime, 10), strconv.FormatUint(k.Ticks()-p.qTicks, 10),
					strconv.Itoa(p.nrun),
				}
				for _, wt := range p.pqWtime {
					row = append(row, strconv.FormatUint(wt, 10))
				}
				table.Append(row)
			}
			p.mu.Unlock()
		}

	default:
		table.SetHeader([]string{"pid", "state", "name"})
		for _, p := range k.proc {
			p.mu.Lock()
			if p.state != StateUnused {
				table.Append([]string{strconv.Itoa(p.pid), p.state.String(), p.name})
			}
			p.mu.Unlock()
		}
	}

	table.Render()

	if k.cfg.Verbose {
		fmt.Fprintln(w, "--- verbose dump ---")
		for _, p := range k.proc {
			p.mu.Lock()
			if p.state != StateUnused {
				spew.Fdump(w, p)
			}
			p.mu.Unlock()
		}
	}
}
