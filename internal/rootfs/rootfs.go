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

// Package rootfs turns a plain extracted application image directory
// into a mountable, chrootable stage1 root: the canonical device/proc/
// sys/tmp skeleton, device node bind mounts, pseudo-filesystem bind
// mounts, and the dev/ptmx symlink a container needs post-chroot.
package rootfs

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// dirSpec is one entry of the canonical directory skeleton. Order
// matters: parents must be created before children (dev before
// dev/net, dev/shm, dev/pts).
type dirSpec struct {
	path string
	mode uint32
}

var canonicalDirs = []dirSpec{
	{"dev", 0755},
	{"dev/net", 0755},
	{"dev/shm", 0755},
	{"dev/pts", 0755},
	{"proc", 0755},
	{"sys", 0755},
	{"tmp", 01777},
}

// deviceNodes is the fixed, ordered set of device nodes bind-mounted
// from the host when present. Absence on the host is not an error.
var deviceNodes = []string{
	"dev/null",
	"dev/zero",
	"dev/full",
	"dev/random",
	"dev/urandom",
	"dev/tty",
	"dev/net/tun",
	"dev/console",
}

// bindSources is the fixed set of host directories bind-mounted
// straight onto their mirrored path inside the rootfs.
var bindSources = []string{
	"proc",
	"sys",
	"dev/shm",
	"dev/pts",
}

// Prepare performs the full rootfs preparation sequence described by
// spec.md §4.A against root, an absolute path to an already-extracted
// application image directory. Each step is mandatory and the order is
// significant; see the per-step comments below for why.
func Prepare(root string) error {
	return prepare(root, false)
}

// prepare implements Prepare; legacy selects the older, pre-dev/pts
// revision's behavior (see legacy.go) and exists only so the test
// suite can compare the two side by side. No cmd/ entrypoint ever
// passes legacy=true.
func prepare(root string, legacy bool) error {
	// Step 1: self-bind-mount so root is itself a mount point (a later
	// private-propagation remount inside the container requires this).
	// The legacy revision omitted MS_REC.
	bindFlags := uintptr(syscall.MS_BIND | syscall.MS_REC)
	if legacy {
		bindFlags = syscall.MS_BIND
	}
	if err := syscall.Mount(root, root, "", bindFlags, ""); err != nil {
		return fmt.Errorf("self bind-mount %q: %w", root, err)
	}

	// Step 2: all following path operations happen relative to this
	// descriptor, never by re-joining an absolute path, so a symlink
	// planted inside the tree cannot redirect a create/unlink outside it.
	rootfd, err := syscall.Open(root, syscall.O_DIRECTORY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %q: %w", root, err)
	}
	defer syscall.Close(rootfd)

	// Step 3: drop known-dangling symlinks some stock images ship. The
	// legacy revision never created dev/ptmx, so it never needed to
	// unlink a stale one either.
	if err := unlinkIfPresent(rootfd, "dev/shm"); err != nil {
		return err
	}
	if !legacy {
		if err := unlinkIfPresent(rootfd, "dev/ptmx"); err != nil {
			return err
		}
	}

	// Step 4-5: zero the mask so the mkdir modes below are honored
	// exactly, then lay down the canonical directory set.
	oldMask := syscall.Umask(0)
	defer syscall.Umask(oldMask)

	for _, d := range canonicalDirs {
		if legacy && d.path == "dev/pts" {
			continue
		}
		if err := syscall.Mkdirat(rootfd, d.path, d.mode); err != nil && err != syscall.EEXIST {
			return fmt.Errorf("mkdir %q: %w", d.path, err)
		}
	}

	// Step 6: done with the descriptor; everything past this point
	// (device placeholder files, bind mounts, the ptmx symlink) goes by
	// plain path joined onto root.
	if err := syscall.Close(rootfd); err != nil {
		return fmt.Errorf("close %q: %w", root, err)
	}
	rootfd = -1

	// Step 7: placeholder + bind mount for each device node present on
	// the host. mknod would not work for /dev/console (it must live on
	// devpts); a plain placeholder shadowed by the bind mount works for
	// every node uniformly.
	for _, dev := range deviceNodes {
		hostPath := "/" + dev
		if _, err := os.Lstat(hostPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat %q: %w", hostPath, err)
		}

		target := filepath.Join(root, dev)
		fd, err := syscall.Open(target, syscall.O_CREAT|syscall.O_WRONLY|syscall.O_CLOEXEC|syscall.O_NOCTTY, 0644)
		if err != nil {
			return fmt.Errorf("create placeholder %q: %w", target, err)
		}
		syscall.Close(fd)

		if err := syscall.Mount(hostPath, target, "", syscall.MS_BIND, ""); err != nil {
			return fmt.Errorf("bind mount %q onto %q: %w", hostPath, target, err)
		}
	}

	// Step 8: pseudo-filesystem bind mounts. The legacy revision never
	// bind-mounted dev/pts (it had no such directory to mount onto).
	for _, b := range bindSources {
		if legacy && b == "dev/pts" {
			continue
		}
		hostPath := "/" + b
		target := filepath.Join(root, b)
		if err := syscall.Mount(hostPath, target, "", syscall.MS_BIND, ""); err != nil {
			return fmt.Errorf("bind mount %q onto %q: %w", hostPath, target, err)
		}
	}

	// Step 9: the legacy revision had no dev/pts, so no ptmx symlink.
	if !legacy {
		ptmx := filepath.Join(root, "dev/ptmx")
		if err := os.Symlink("/dev/pts/ptmx", ptmx); err != nil && !os.IsExist(err) {
			return fmt.Errorf("symlink %q: %w", ptmx, err)
		}
	}

	return nil
}

// unlinkIfPresent unlinks path relative to dirfd, tolerating "not
// found" and "is a directory" (the entry may already be the correct
// kind), matching spec.md §7's filesystem-benign error class.
func unlinkIfPresent(dirfd int, path string) error {
	err := syscall.Unlinkat(dirfd, path, 0)
	if err == nil || err == syscall.ENOENT || err == syscall.EISDIR {
		return nil
	}
	return fmt.Errorf("unlink %q: %w", path, err)
}
