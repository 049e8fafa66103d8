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

package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/spf13/pflag"

	"github.com/minikernel/xkernel/pkg/config"
	"github.com/minikernel/xkernel/pkg/demo"
	"github.com/minikernel/xkernel/pkg/kernel"
	"github.com/minikernel/xkernel/pkg/klog"
)

// procdumpCmd implements subcommands.Command for "debug procdump": a
// one-shot dump of the process table after a short fixed run.
type procdumpCmd struct {
	ticks int
}

func (*procdumpCmd) Name() string     { return "procdump" }
func (*procdumpCmd) Synopsis() string { return "print a one-shot process table snapshot" }
func (*procdumpCmd) Usage() string {
	return "debug procdump [--ticks N] [--policy rr|fcfs|pbs|mlfq]\n"
}

func (p *procdumpCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.ticks, "ticks", 20, "number of timer ticks to run before dumping")
}

func (p *procdumpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fs := pflag.NewFlagSet("procdump", pflag.ContinueOnError)
	cfg := config.RegisterFlags(fs)
	if err := fs.Parse(f.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: procdump:", err)
		return subcommands.ExitUsageError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: procdump:", err)
		return subcommands.ExitFailure
	}

	log := klog.New(cfg.Verbose, os.Stderr)
	k, err := kernel.New(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: procdump:", err)
		return subcommands.ExitFailure
	}
	demo.Populate(k, log)

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		for k.Ticks() < uint64(p.ticks) {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	k.Boot(runCtx)

	k.Procdump(os.Stdout)
	return subcommands.ExitSuccess
}
