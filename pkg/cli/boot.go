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
	"os/signal"
	"time"

	"github.com/google/subcommands"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/minikernel/xkernel/pkg/config"
	"github.com/minikernel/xkernel/pkg/demo"
	"github.com/minikernel/xkernel/pkg/kernel"
	"github.com/minikernel/xkernel/pkg/klog"
)

// bootCmd implements subcommands.Command for "boot": it constructs a
// Kernel from the flags registered on a pflag.FlagSet, runs it for a
// fixed number of ticks against a small demo workload mix, and exits.
//
// SetFlags only needs to satisfy subcommands.Command's stdlib
// *flag.FlagSet signature; the actual flags the boot config cares
// about (policy, nproc, ncpu, agelimit, tick, verbose) are registered
// on a pflag.FlagSet and parsed from the stdlib FlagSet's remaining
// arguments in Execute, so the subcommand owns its own flag surface
// independently of the dispatcher that invoked it.
type bootCmd struct {
	ticks int
}

func (*bootCmd) Name() string     { return "boot" }
func (*bootCmd) Synopsis() string { return "run a simulated kernel for a number of ticks" }
func (*bootCmd) Usage() string {
	return "boot [--ticks N] [--policy rr|fcfs|pbs|mlfq] [--nproc N] [--ncpu N] [--agelimit N] [--tick DURATION] [-v]\n"
}

func (b *bootCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&b.ticks, "ticks", 200, "number of timer ticks to run before shutting down")
}

func (b *bootCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fs := pflag.NewFlagSet("boot", pflag.ContinueOnError)
	cfg := config.RegisterFlags(fs)
	if err := fs.Parse(f.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: boot:", err)
		return subcommands.ExitUsageError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: boot:", err)
		return subcommands.ExitFailure
	}

	log := klog.New(cfg.Verbose, os.Stderr)
	k, err := kernel.New(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xkernel: boot:", err)
		return subcommands.ExitFailure
	}

	// A SIGQUIT during boot triggers an immediate procdump, playing the
	// role console input does on a real console-driven kernel.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGQUIT)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			k.Procdump(os.Stdout)
		}
	}()

	demo.Populate(k, log)

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		for k.Ticks() < uint64(b.ticks) {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	if err := k.Boot(runCtx); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, "xkernel: boot:", err)
		return subcommands.ExitFailure
	}

	k.Procdump(os.Stdout)
	return subcommands.ExitSuccess
}
