//go:build !release

package core

import "fmt"

const AssertionsEnabled = true

// Assert panics with the formatted message when cond is false. It is compiled
// out when building with the release tag.
func Assert(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	getLogger().Errorf("assertion failed: %s", msg)
	panic("assertion failed: " + msg)
}
