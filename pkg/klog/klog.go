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

// Package klog constructs the kernel's logger: a single logrus.Logger,
// configured once at boot, that callers log through with structured
// fields (for example policy, ncpu and nproc at kernel boot).
package klog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured the way a boot-time kernel log is:
// full timestamps, text formatting by default, discarding everything
// below Info unless verbose is requested.
func New(verbose bool, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: false})
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
