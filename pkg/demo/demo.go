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

// Package demo populates a freshly booted Kernel with a small,
// deterministic workload mix so `xkernel boot` has something to
// schedule. It exists purely for the CLI's benefit; none of the
// scheduling subsystem depends on it.
package demo

import (
	"github.com/sirupsen/logrus"

	"github.com/minikernel/xkernel/pkg/kernel"
)

// spin runs a CPU-bound workload for n ticks, then exits with status 0.
func spin(n int) kernel.Workload {
	return func(k *kernel.Kernel, p *kernel.Process) {
		k.RunTicks(p, n)
	}
}

// napper alternates short sleeps with single ticks of work, standing
// in for an I/O-bound process that should accumulate PBS niceness or
// MLFQ aging credit while CPU-bound siblings run.
func napper(n int) kernel.Workload {
	return func(k *kernel.Kernel, p *kernel.Process) {
		for i := 0; i < 5; i++ {
			if err := k.SleepTicks(p, n); err != nil {
				return
			}
			k.RunTicks(p, 1)
		}
	}
}

// Populate boots an init process that forks a small, fixed mix of
// demo children and waits for each of them to exit, reporting their
// pid and exit status via log. It is the CLI's only caller; the
// kernel package itself never calls this.
func Populate(k *kernel.Kernel, log *logrus.Logger) {
	_, err := k.InitProc("init", func(k *kernel.Kernel, p *kernel.Process) {
		children := []struct {
			name string
			work kernel.Workload
		}{
			{"spinner-a", spin(40)},
			{"spinner-b", spin(40)},
			{"spinner-c", spin(40)},
			{"napper", napper(10)},
		}
		for _, c := range children {
			if _, err := k.Fork(p, c.name, c.work); err != nil {
				log.WithError(err).WithField("name", c.name).Warn("demo: fork failed")
			}
		}
		for range children {
			pid, status, err := k.Wait(p)
			if err != nil {
				break
			}
			log.WithFields(logrus.Fields{"pid": pid, "status": status}).Info("demo: child exited")
		}
	})
	if err != nil {
		log.WithError(err).Error("demo: failed to start init")
	}
}
