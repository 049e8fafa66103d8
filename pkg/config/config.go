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

// Package config parses and validates the kernel's boot-time
// configuration: flags populate a single Config struct that is
// validated once before boot.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Policy names a scheduling policy. The choice is made once, at kernel
// construction, and is immutable for the lifetime of the booted
// kernel.
type Policy string

// The four selectable policies. Policy RR is the default.
const (
	PolicyRR   Policy = "rr"
	PolicyFCFS Policy = "fcfs"
	PolicyPBS  Policy = "pbs"
	PolicyMLFQ Policy = "mlfq"
)

// Config is the kernel's immutable boot-time configuration.
type Config struct {
	Policy     Policy
	NPROC      int
	NCPU       int
	AgeLimit   int
	TickPeriod time.Duration
	Verbose    bool
}

// Default returns the configuration a freshly built kernel boots with
// absent any flags.
func Default() *Config {
	return &Config{
		Policy:     PolicyRR,
		NPROC:      64,
		NCPU:       4,
		AgeLimit:   30,
		TickPeriod: 10 * time.Millisecond,
	}
}

// RegisterFlags registers the boot flags on fs and returns the Config
// they populate.
func RegisterFlags(fs *pflag.FlagSet) *Config {
	c := Default()
	fs.StringVar((*string)(&c.Policy), "policy", string(c.Policy), "scheduling policy: rr, fcfs, pbs, mlfq")
	fs.IntVar(&c.NPROC, "nproc", c.NPROC, "maximum number of process table slots")
	fs.IntVar(&c.NCPU, "ncpu", c.NCPU, "number of simulated CPUs")
	fs.IntVar(&c.AgeLimit, "agelimit", c.AgeLimit, "MLFQ aging threshold, in ticks")
	fs.DurationVar(&c.TickPeriod, "tick", c.TickPeriod, "simulated timer tick period")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "verbose process dump")
	return c
}

// Validate rejects configurations the rest of the kernel cannot run
// against, failing fast before any CPU starts.
func (c *Config) Validate() error {
	switch c.Policy {
	case PolicyRR, PolicyFCFS, PolicyPBS, PolicyMLFQ:
	default:
		return fmt.Errorf("config: unknown policy %q", c.Policy)
	}
	if c.NPROC <= 0 {
		return fmt.Errorf("config: nproc must be positive, got %d", c.NPROC)
	}
	if c.NCPU <= 0 {
		return fmt.Errorf("config: ncpu must be positive, got %d", c.NCPU)
	}
	if c.AgeLimit <= 0 {
		return fmt.Errorf("config: agelimit must be positive, got %d", c.AgeLimit)
	}
	return nil
}
