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

// Package stage1log provides optional structured tracing for the
// rootfs preparer and namespace entrant. It is strictly additive: the
// mandatory stderr error contract spec.md §7 defines lives in
// internal/stage1err and never touches this package. stage1log exists
// for operators who pass -debug (or set STAGE1_DEBUG) and want to see
// the mount/namespace/exec sequence as it happens.
package stage1log

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
)

// EnvVar is the environment variable equivalent of the -debug flag,
// checked by cmd/prepare-app and cmd/enter so the toggle works the same
// whether invoked directly or via a wrapper that can't pass flags
// through.
const EnvVar = "STAGE1_DEBUG"

// Enabled reports whether verbose tracing was requested, either via the
// debug flag value passed in or via EnvVar.
func Enabled(debugFlag bool) bool {
	if debugFlag {
		return true
	}
	v := os.Getenv(EnvVar)
	return v != "" && v != "0"
}

// New returns a logr.Logger backed by zap when enabled is true, and a
// no-op logger otherwise. Callers hold onto one Logger per process and
// pass it down rather than using a package-level global, since multiple
// of these binaries share this package but never share a process.
func New(enabled bool) logr.Logger {
	if !enabled {
		return logr.Discard()
	}
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	z, err := zc.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(z)
}
