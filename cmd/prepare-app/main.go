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

// prepare-app turns a plain extracted application image directory into
// a mountable, chrootable stage1 root: it lays down the canonical
// dev/proc/sys/tmp skeleton, bind-mounts device nodes and
// pseudo-filesystems from the host, and repairs symlinks that would
// otherwise dangle post-chroot. See internal/rootfs for the actual
// sequence; this binary is just the argv/exit-code contract around it.
package main

import (
	"flag"
	"os"

	"github.com/rkt/rkt/internal/rootfs"
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
	errs.FatalIf(len(args) != 1, "usage: %s <rootfs>", os.Args[0])

	root := args[0]
	log.Info("preparing rootfs", "root", root)

	if err := rootfs.Prepare(root); err != nil {
		errs.Fatalf("%v", err)
	}

	log.Info("rootfs prepared", "root", root)
}
