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
	"testing"
)

func TestShebangNotAShebang(t *testing.T) {
	interp, found, err := Shebang(buildELF(t, true, false, "/x"))
	if err != nil {
		t.Fatalf("Shebang() error = %v", err)
	}
	if found || interp != "" {
		t.Fatalf("Shebang() = (%q, %v), want (\"\", false)", interp, found)
	}
}

func TestShebangParsesInterpreterLine(t *testing.T) {
	data := []byte("#!/bin/sh -e\nrest of the script\n")
	interp, found, err := Shebang(data)
	if err != nil {
		t.Fatalf("Shebang() error = %v", err)
	}
	if !found {
		t.Fatal("Shebang() found = false, want true")
	}
	if interp != "/bin/sh -e" {
		t.Fatalf("Shebang() = %q, want %q", interp, "/bin/sh -e")
	}
}

func TestShebangUnterminatedLineIsFatal(t *testing.T) {
	data := append([]byte("#!"), bytes.Repeat([]byte("x"), PathMax+1)...)
	_, found, err := Shebang(data)
	if !found {
		t.Fatal("Shebang() found = false, want true (marker present)")
	}
	if err == nil {
		t.Fatal("expected an error for a shebang line with no newline within PathMax")
	}
}

func TestShebangEmptyInterpreter(t *testing.T) {
	data := []byte("#!\n")
	interp, found, err := Shebang(data)
	if err != nil {
		t.Fatalf("Shebang() error = %v", err)
	}
	if !found || interp != "" {
		t.Fatalf("Shebang() = (%q, %v), want (\"\", true)", interp, found)
	}
}
