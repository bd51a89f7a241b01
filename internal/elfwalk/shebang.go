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
	"bytes"
	"fmt"
)

// PathMax bounds how far into a candidate shebang line the search for a
// terminating newline goes, mirroring the original's use of PATH_MAX as
// the search ceiling (a shebang interpreter path cannot usefully exceed
// it anyway).
const PathMax = 4096

// Shebang reports whether data opens with a "#!" line and, if so, parses
// the interpreter path out of it. found is false (with interp=="" and
// err==nil) for any data that doesn't begin with the two-byte marker;
// callers should then try the ELF path instead.
//
// Unlike Interp, an unterminated shebang line is always fatal: the
// original's memchr scan over at most PathMax bytes treats "no newline
// within bound" as unrecoverable ("shebang line too long" names it
// explicitly, though the real failure mode also covers a file that
// legitimately ends before any newline — see SPEC_FULL.md for why this is
// intentionally not special-cased).
func Shebang(data []byte) (interp string, found bool, err error) {
	if len(data) < 2 || data[0] != '#' || data[1] != '!' {
		return "", false, nil
	}

	rest := data[2:]
	maxlen := PathMax
	if len(rest) < maxlen {
		maxlen = len(rest)
	}
	search := rest[:maxlen]

	nl := bytes.IndexByte(search, '\n')
	if nl < 0 {
		return "", true, fmt.Errorf("shebang line too long")
	}

	return string(search[:nl]), true, nil
}
