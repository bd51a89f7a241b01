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

package stage1err

import "testing"

func TestFatalIfNonFatalDoesNotExit(t *testing.T) {
	var c Counter
	// None of these conditions hold, so none should call os.Exit; reaching
	// the end of the test is the assertion.
	c.FatalIf(false, "unreachable %d", 1)
	c.FatalIf(false, "unreachable %d", 2)
	c.PFatalIf(false, nil, "unreachable %d", 3)

	if c.n != 3 {
		t.Fatalf("expected counter to advance on every call regardless of outcome, got %d", c.n)
	}
}
