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

// enter is the namespace entrant: given a running pod leader's pid, it
// joins that pod's IPC/UTS/NET/PID/MNT namespaces, chroots into its
// root, forks (a PID-namespace switch only affects the forking
// process's children), and execs the in-pod diagnostic exec helper.
// See internal/nsentry for the join/chroot/fork/exec/wait sequence.
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/rkt/rkt/internal/nsentry"
	"github.com/rkt/rkt/internal/stage1err"
	"github.com/rkt/rkt/internal/stage1log"
)

var debug bool

func init() {
	flag.BoolVar(&debug, "debug", false, "enable verbose tracing (also via STAGE1_DEBUG)")
}

func main() {
	flag.Parse()
	errs := &stage1err.Counter{}
	log := stage1log.New(stage1log.Enabled(debug))

	args := flag.Args()
	errs.FatalIf(len(args) < 3, "usage: %s <pid> <imageid> <cmd> [args...]", os.Args[0])

	pid, err := strconv.Atoi(args[0])
	errs.PFatalIf(err != nil, err, "invalid pid %q", args[0])

	opts := nsentry.Options{
		Pid:     pid,
		ImageID: args[1],
		Cmd:     args[2],
		Args:    args[3:],
	}

	log.Info("entering pod", "pid", pid, "image", opts.ImageID, "cmd", opts.Cmd)

	code, err := nsentry.Run(opts)
	if err != nil {
		errs.Fatalf("%v", err)
	}

	os.Exit(code)
}
