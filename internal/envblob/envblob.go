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

// Package envblob implements the environment blob format consumed by the
// diagnostic exec: a sequence of "KEY=VALUE" records separated by NUL
// bytes, with an optional trailing NUL on the last record. It mirrors the
// load_env() routine from the original diagexec.c, including the quirk
// that a malformed record (one without an "=") is a fatal error quoting
// the offending record, and that an empty blob is legal and yields an
// empty environment.
package envblob

import (
	"fmt"
	"strings"
)

// Pair is one decoded KEY=VALUE record, in blob order.
type Pair struct {
	Key   string
	Value string
}

// Parse splits a raw env blob into its KEY=VALUE records. It does not
// touch the process environment; callers decide how to apply the result
// (diagexec clears and repopulates os.Environ-equivalent state, stage1ctl
// just prints it).
//
// The blob's records are NUL-separated; Parse tolerates a missing
// trailing NUL (the last record's terminator is optional) but treats any
// record without an "=" as an error, quoting the record the same way the
// C implementation does.
func Parse(blob []byte) ([]Pair, error) {
	if len(blob) == 0 {
		return nil, nil
	}

	// A private mapping of the file is null-terminated by the original
	// implementation by forcing the final byte to '\0' before scanning;
	// here we just treat a missing final NUL as "the last record ends at
	// end of slice" rather than mutating the input.
	records := splitRecords(blob)

	pairs := make([]Pair, 0, len(records))
	for _, rec := range records {
		idx := strings.IndexByte(rec, '=')
		if idx < 0 {
			return nil, fmt.Errorf("malformed environment entry: %q", rec)
		}
		pairs = append(pairs, Pair{Key: rec[:idx], Value: rec[idx+1:]})
	}
	return pairs, nil
}

// splitRecords breaks a blob into NUL-delimited strings, including a
// final record even when the blob has no trailing NUL.
func splitRecords(blob []byte) []string {
	s := string(blob)
	if strings.HasSuffix(s, "\x00") {
		s = s[:len(s)-1]
	}
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}

// Encode is the inverse of Parse: it renders pairs back into a
// NUL-separated blob with a trailing NUL, the canonical form an
// orchestrator would write to the env file consumed by diagexec.
func Encode(pairs []Pair) []byte {
	var b []byte
	for _, p := range pairs {
		b = append(b, p.Key...)
		b = append(b, '=')
		b = append(b, p.Value...)
		b = append(b, 0)
	}
	return b
}
