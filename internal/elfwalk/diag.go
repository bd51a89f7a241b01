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

package elfwalk

import (
	"fmt"
	"os"
	"strings"
)

// MaxDiagDepth bounds how many interpreter hops the walk will follow
// before giving up, guarding against shebang or PT_INTERP cycles.
const MaxDiagDepth = 10

// Diagnose explains why diagexec failed to execve(2) path by following
// its shebang or PT_INTERP chain as far as it can, matching diag() in
// the reference diagexec: each hop either lands on a script (shebang),
// a dynamically-linked ELF (PT_INTERP), an ELF with no program header
// table (nothing further to say, returns nil), an ELF whose program
// header table has no PT_INTERP entry, such as a statically-linked
// binary (unable to determine interpreter, an error), or something
// diagexec can't explain at all (unsupported file type).
func Diagnose(path string) error {
	return (&walker{}).visit(path)
}

type walker struct {
	depth int
}

func (w *walker) visit(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if fi.Mode()&0111 == 0 {
		return fmt.Errorf("%q is not executable", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	if interp, found, err := Shebang(data); found {
		if err != nil {
			return err
		}
		return w.follow(interp)
	}

	if IsELF(data) {
		interp, ok, err := Interp(data)
		if err != nil {
			if err == ErrNoInterpreter {
				return fmt.Errorf("unable to determine interpreter for %q", path)
			}
			return err
		}
		if !ok {
			// No program header table: nothing further to diagnose.
			return nil
		}
		return w.follow(interp)
	}

	return fmt.Errorf("unsupported file type: %q", path)
}

func (w *walker) follow(interp string) error {
	if !strings.HasPrefix(interp, "/") {
		return fmt.Errorf("path must be absolute: %q", interp)
	}
	w.depth++
	if w.depth > MaxDiagDepth {
		return fmt.Errorf("excessive interpreter recursion, giving up")
	}
	return w.visit(interp)
}
