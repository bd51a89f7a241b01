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

package rootfs

import (
	"bufio"
	"os"
	"path/filepath"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// allDeviceNodes and allBindSources, listed here rather than reusing
// the unexported package vars, double as a cross-check that the
// package's own lists haven't silently drifted from spec.md §3.
var allDeviceNodes = []string{
	"dev/null", "dev/zero", "dev/full", "dev/random",
	"dev/urandom", "dev/tty", "dev/net/tun", "dev/console",
}

var allBindSources = []string{"proc", "sys", "dev/shm", "dev/pts"}

func unmountAll(root string) {
	for _, dev := range allDeviceNodes {
		syscall.Unmount(filepath.Join(root, dev), syscall.MNT_DETACH)
	}
	for _, b := range allBindSources {
		syscall.Unmount(filepath.Join(root, b), syscall.MNT_DETACH)
	}
	syscall.Unmount(root, syscall.MNT_DETACH)
}

// isMountPoint reports whether path appears as a mount point in
// /proc/self/mountinfo, the observable spec.md §8 property 2 asks for.
func isMountPoint(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	abs = filepath.Clean(abs)

	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := splitFields(sc.Text())
		if len(fields) < 5 {
			continue
		}
		if filepath.Clean(fields[4]) == abs {
			return true, nil
		}
	}
	return false, sc.Err()
}

func splitFields(line string) []string {
	var fields []string
	start := -1
	for i, r := range line {
		if r == ' ' {
			if start >= 0 {
				fields = append(fields, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, line[start:])
	}
	return fields
}

var _ = Describe("Prepare", func() {
	var root string

	BeforeEach(func() {
		if os.Geteuid() != 0 {
			Skip("rootfs preparation requires CAP_SYS_ADMIN; run as root")
		}
		var err error
		root, err = os.MkdirTemp("", "rootfs-prepare-")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if root != "" {
			unmountAll(root)
			Expect(os.RemoveAll(root)).To(Succeed())
		}
	})

	It("lays down the canonical directory skeleton", func() {
		Expect(Prepare(root)).To(Succeed())

		specs := []struct {
			path string
			mode os.FileMode
		}{
			{"dev", 0755},
			{"dev/net", 0755},
			{"dev/shm", 0755},
			{"dev/pts", 0755},
			{"proc", 0755},
			{"sys", 0755},
			{"tmp", os.ModeSticky | 0777},
		}
		for _, s := range specs {
			fi, err := os.Stat(filepath.Join(root, s.path))
			Expect(err).NotTo(HaveOccurred(), s.path)
			Expect(fi.IsDir()).To(BeTrue(), s.path)
			Expect(fi.Mode() & (os.ModeSticky | 0777)).To(Equal(s.mode), s.path)
		}
	})

	It("creates the dev/ptmx symlink pointing at /dev/pts/ptmx", func() {
		Expect(Prepare(root)).To(Succeed())
		target, err := os.Readlink(filepath.Join(root, "dev/ptmx"))
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal("/dev/pts/ptmx"))
	})

	// spec.md §8 property 1.
	It("is idempotent across repeated runs", func() {
		Expect(Prepare(root)).To(Succeed())
		Expect(Prepare(root)).To(Succeed())
	})

	// spec.md §8 property 2.
	It("makes root itself a mount point", func() {
		Expect(Prepare(root)).To(Succeed())
		ok, err := isMountPoint(root)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	// spec.md §8 property 3.
	It("tolerates device nodes absent on the host", func() {
		Expect(Prepare(root)).To(Succeed())
		for _, dev := range allDeviceNodes {
			_, hostErr := os.Lstat("/" + dev)
			_, rootErr := os.Lstat(filepath.Join(root, dev))
			if os.IsNotExist(hostErr) {
				Expect(os.IsNotExist(rootErr)).To(BeTrue(), dev+" absent on host must stay absent in rootfs")
			} else {
				Expect(rootErr).NotTo(HaveOccurred(), dev+" present on host must appear in rootfs")
			}
		}
	})

	It("is a strict superset of the legacy revision's skeleton", func() {
		legacyRoot, err := os.MkdirTemp("", "rootfs-legacy-")
		Expect(err).NotTo(HaveOccurred())
		defer func() {
			unmountAll(legacyRoot)
			os.RemoveAll(legacyRoot)
		}()

		Expect(prepareLegacy(legacyRoot)).To(Succeed())

		_, err = os.Stat(filepath.Join(legacyRoot, "dev/pts"))
		Expect(os.IsNotExist(err)).To(BeTrue(), "legacy revision must not create dev/pts")
		_, err = os.Lstat(filepath.Join(legacyRoot, "dev/ptmx"))
		Expect(os.IsNotExist(err)).To(BeTrue(), "legacy revision must not create dev/ptmx")

		for _, dir := range []string{"dev", "dev/net", "dev/shm", "proc", "sys", "tmp"} {
			_, err := os.Stat(filepath.Join(legacyRoot, dir))
			Expect(err).NotTo(HaveOccurred(), dir+" must still exist under the legacy revision")
		}
	})
})
