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

// Package main builds the preload shim: a dynamic library loaded into
// the container manager process (historically systemd-nspawn) via
// LD_PRELOAD, patching three of its assumptions that don't hold on
// every host:
//
//   - it fakes lstat("/run/systemd/system/") as an existing directory
//     on hosts that don't run systemd;
//   - it turns the manager's close() of the outer orchestrator's pod
//     lock fd into "set close-on-exec" instead, so the lock survives
//     into the running container without being visible from inside it;
//   - it intercepts the raw clone(2) syscall multiplexer entry point to
//     capture the pid of the pod leader the manager just forked, and
//     persists it to the pod's pid file.
//
// None of this is reachable from pure Go: the symbols below must have
// the exact C ABI names the dynamic linker's symbol resolution expects
// (__lxstat, close, syscall), and must resolve the *real* implementations
// from the next library in the search chain via dlsym(RTLD_NEXT, ...)
// rather than recursing into themselves. cgo's c-shared buildmode is
// used purely as a vehicle to compile and link this C translation unit;
// the Go side of this file contributes nothing but an unused main().
package main

/*
#define _GNU_SOURCE
#include <dlfcn.h>
#include <errno.h>
#include <fcntl.h>
#include <stdarg.h>
#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <sys/stat.h>
#include <sys/syscall.h>
#include <sys/types.h>
#include <unistd.h>

#define ENV_LOCKFD "RKT_LOCK_FD"
#define SYSTEMD_SYSTEM_PATH "/run/systemd/system/"
#define PIDFILE_NAME "pid"
#define PIDFILE_TMP_NAME "pid.tmp"

static int (*real_lxstat)(int, const char *, struct stat *);
static int (*real_close)(int);
static long (*real_syscall)(long, ...);
static int lock_fd = -1;

__attribute__((constructor)) static void shim_init(void)
{
	const char *env = getenv(ENV_LOCKFD);
	if (env != NULL)
		lock_fd = atoi(env);

	real_lxstat = dlsym(RTLD_NEXT, "__lxstat");
	real_close = dlsym(RTLD_NEXT, "close");
	real_syscall = dlsym(RTLD_NEXT, "syscall");
}

int __lxstat(int ver, const char *path, struct stat *st)
{
	int ret = real_lxstat(ver, path, st);

	if (ret == -1 && strcmp(path, SYSTEMD_SYSTEM_PATH) == 0) {
		memset(st, 0, sizeof(*st));
		st->st_mode = S_IFDIR;
		return 0;
	}

	return ret;
}

int close(int fd)
{
	if (lock_fd != -1 && fd == lock_fd)
		return fcntl(fd, F_SETFD, FD_CLOEXEC);

	return real_close(fd);
}

// persist_pid writes pid atomically to ./pid via write-then-rename
// through ./pid.tmp, so a concurrent reader (the namespace entrant)
// never observes a truncated or partial line.
static void persist_pid(long pid)
{
	FILE *f = fopen(PIDFILE_TMP_NAME, "w");
	if (f == NULL)
		return;
	fprintf(f, "%ld\n", pid);
	fflush(f);
	fsync(fileno(f));
	fclose(f);
	rename(PIDFILE_TMP_NAME, PIDFILE_NAME);
}

long syscall(long number, ...)
{
	if (number != SYS_clone)
		return -1;

	va_list ap;
	va_start(ap, number);
	unsigned long flags = va_arg(ap, unsigned long);
	va_end(ap);

	// A NULL child stack is valid for a fork-like clone: the kernel
	// duplicates the caller's stack via copy-on-write the same way
	// fork(2) does.
	long ret = real_syscall(SYS_clone, flags, NULL);

	if (ret > 0)
		persist_pid(ret);

	return ret;
}
*/
import "C"

func main() {}
