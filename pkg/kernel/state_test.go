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

import "testing"

func TestStateStringCoversLifecycle(t *testing.T) {
	cases := []struct {
		s    State
		want string
	}{
		{StateUnused, "unused"},
		{StateUsed, "used"},
		{StateSleeping, "sleep"},
		{StateRunnable, "runble"},
		{StateRunning, "run"},
		{StateZombie, "zombie"},
		{State(99), "???"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("State(%d).String() = %q, want %q", c.s, got, c.want)
		}
	}
}
