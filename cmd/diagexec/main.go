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

// diagexec is the in-container entry point: it loads a serialized
// environment file, chroots and chdirs into the application's root,
// drops to the requested uid/gid, and execs the application. If the
// exec fails with ENOENT or EACCES it performs a best-effort diagnostic
// walk (shebang chain, ELF PT_INTERP) to explain why, instead of just
// reporting "no such file or directory" for what might be a missing
// interpreter three hops down a script chain.
package main

import (
	"os"
	"strconv"

	"github.com/rkt/rkt/internal/diagexec"
	"github.com/rkt/rkt/internal/stage1err"
)

func main() {
	errs := &stage1err.Counter{}

	args := os.Args[1:]
	errs.FatalIf(len(args) < 6, "usage: %s <rootfs> <workdir> <envfile> <uid> <gid> <exe> [args...]", os.Args[0])

	uid, err := strconv.Atoi(args[3])
	errs.PFatalIf(err != nil, err, "invalid uid %q", args[3])
	gid, err := strconv.Atoi(args[4])
	errs.PFatalIf(err != nil, err, "invalid gid %q", args[4])

	opts := diagexec.Options{
		Rootfs:  args[0],
		Workdir: args[1],
		EnvFile: args[2],
		UID:     uid,
		GID:     gid,
		Exe:     args[5],
		Args:    args[6:],
	}

	// Run only returns on failure: on success the process image has
	// already been replaced by opts.Exe.
	if err := diagexec.Run(opts); err != nil {
		errs.Fatalf("%v", err)
	}
}
