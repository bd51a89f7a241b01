/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package stage1err provides the exit-on-error convention shared by the
// stage1 core binaries. It generalizes the "exit_if"/"pexit_if" macros from
// the original C implementation: every fatal condition prints an
// "Error: "-prefixed message to stderr and exits with a small positive
// status equal to the number of fatal sites visited so far in this
// process, never zero and never retried.
package stage1err

import (
	"fmt"
	"os"
)

// Counter accumulates fatal sites visited by one process, matching the
// original's static exit_err / errornum counters. Each binary's main
// should construct exactly one Counter and share it with every package
// that can fail.
type Counter struct {
	n int
}

// Fatalf increments the counter, writes the formatted, "Error: "-prefixed
// message to stderr, and exits with the new counter value. It never
// returns.
func (c *Counter) Fatalf(format string, args ...interface{}) {
	c.n++
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(c.n)
}

// FatalIf increments the counter on every call and, only when cond is
// true, writes the "Error: "-prefixed message to stderr and exits with
// the new counter value; otherwise it returns. This mirrors exit_if's
// "increment always, print/exit only if the condition holds" shape so
// that exit codes stay stable across a sequence of non-fatal checks.
func (c *Counter) FatalIf(cond bool, format string, args ...interface{}) {
	c.n++
	if cond {
		fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
		os.Exit(c.n)
	}
}

// PFatalIf is FatalIf with the errno-style err appended to the message,
// mirroring pexit_if.
func (c *Counter) PFatalIf(cond bool, err error, format string, args ...interface{}) {
	c.n++
	if cond {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(c.n)
	}
}
