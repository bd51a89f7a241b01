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

// Package diagexec implements the in-pod entry point: load a
// serialized environment, chroot/chdir, drop privileges, and exec the
// application, falling back to a diagnostic walk when the exec itself
// can't find or run the target.
package diagexec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rkt/rkt/internal/elfwalk"
	"github.com/rkt/rkt/internal/envblob"
)

// Options describes one invocation: `diagexec <rootfs> <workdir> <envfile> <uid> <gid> <exe> [args...]`.
type Options struct {
	Rootfs  string
	Workdir string
	EnvFile string
	UID     int
	GID     int
	Exe     string
	Args    []string
}

// Run performs the full sequence spec.md §4.C describes. On success it
// never returns (the process image has been replaced by Exe). On
// failure it returns an error; ENOENT/EACCES from the exec itself are
// folded into a diagnostic-walk error via internal/elfwalk rather than
// returned raw, matching the original's diag(exe) fallback.
func Run(opts Options) error {
	data, err := os.ReadFile(opts.EnvFile)
	if err != nil {
		return fmt.Errorf("read env file %q: %w", opts.EnvFile, err)
	}
	if err := loadEnv(data); err != nil {
		return err
	}

	if err := syscall.Chroot(opts.Rootfs); err != nil {
		return fmt.Errorf("chroot %q: %w", opts.Rootfs, err)
	}
	if err := syscall.Chdir(opts.Workdir); err != nil {
		return fmt.Errorf("chdir %q: %w", opts.Workdir, err)
	}

	// Order matters: gid before uid, since dropping uid first would
	// remove the privilege needed to still change gid.
	if opts.GID > 0 {
		if err := syscall.Setresgid(opts.GID, opts.GID, opts.GID); err != nil {
			return fmt.Errorf("setresgid %d: %w", opts.GID, err)
		}
	}
	if opts.UID > 0 {
		if err := syscall.Setresuid(opts.UID, opts.UID, opts.UID); err != nil {
			return fmt.Errorf("setresuid %d: %w", opts.UID, err)
		}
	}

	argv := append([]string{opts.Exe}, opts.Args...)
	execErr := execvp(opts.Exe, argv, os.Environ())
	if execErr != syscall.ENOENT && execErr != syscall.EACCES {
		return fmt.Errorf("exec of %q failed: %w", opts.Exe, execErr)
	}

	if diagErr := elfwalk.Diagnose(opts.Exe); diagErr != nil {
		return diagErr
	}
	return fmt.Errorf("exec of %q failed: %w", opts.Exe, execErr)
}

// loadEnv replaces the process environment with exactly the pairs
// encoded in blob, matching load_env()'s clearenv-then-putenv sequence:
// the env file is the sole source of truth for the application's
// environment, nothing from diagexec's own environment leaks through.
func loadEnv(blob []byte) error {
	pairs, err := envblob.Parse(blob)
	if err != nil {
		return err
	}
	os.Clearenv()
	for _, p := range pairs {
		if err := os.Setenv(p.Key, p.Value); err != nil {
			return fmt.Errorf("setenv %q: %w", p.Key, err)
		}
	}
	return nil
}

// execvp mirrors libc execvp: if exe contains a slash it is executed
// directly, otherwise each directory in $PATH is tried in turn. Search
// continues past ENOENT and EACCES candidates and stops at any other
// error, which is returned. If no candidate succeeds, EACCES is returned
// when any candidate failed with it, otherwise ENOENT (syscall.Exec
// never returns on success, it replaces the process image).
func execvp(exe string, argv []string, envv []string) error {
	if strings.Contains(exe, "/") {
		return syscall.Exec(exe, argv, envv)
	}

	lastErr := error(syscall.ENOENT)
	for _, dir := range strings.Split(os.Getenv("PATH"), ":") {
		if dir == "" {
			dir = "."
		}
		err := syscall.Exec(filepath.Join(dir, exe), argv, envv)
		if err == nil {
			return nil
		}
		if err == syscall.EACCES {
			lastErr = err
		} else if err != syscall.ENOENT {
			return err
		}
	}
	return lastErr
}
