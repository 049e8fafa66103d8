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
	"context"
	"testing"
	"time"

	"github.com/minikernel/xkernel/pkg/config"
)

// bootTestKernel constructs and boots a Kernel for an integration test,
// returning it once its CPUs and accounting ticker are live. Callers
// are responsible for keeping their workloads finite: cancelling the
// context while a process is mid-RunTicks, relying on a now-stopped
// ticker, is outside what this harness needs to support.
func bootTestKernel(t *testing.T, cfg *config.Config) *Kernel {
	t.Helper()
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Boot(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	})
	return k
}

func testConfig(policy config.Policy) *config.Config {
	cfg := config.Default()
	cfg.Policy = policy
	cfg.NPROC = 16
	cfg.NCPU = 2
	cfg.TickPeriod = 2 * time.Millisecond
	cfg.AgeLimit = 10
	return cfg
}
