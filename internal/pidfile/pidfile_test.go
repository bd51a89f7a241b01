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

package pidfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if err := Write(dir, 4242); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != 4242 {
		t.Fatalf("Read() = %d, want 4242", got)
	}

	// The staging file must not linger after a successful write.
	if _, err := os.Stat(filepath.Join(dir, tmpName)); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be gone after rename, stat err = %v", tmpName, err)
	}
}

func TestWriteOverwritesPreviousPid(t *testing.T) {
	dir := t.TempDir()

	if err := Write(dir, 1); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if err := Write(dir, 2); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != 2 {
		t.Fatalf("Read() = %d, want 2", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := Read(dir); err == nil {
		t.Fatal("expected an error reading a pid file that was never written")
	}
}
