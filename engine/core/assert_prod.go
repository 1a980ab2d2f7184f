//go:build release

package core

const AssertionsEnabled = false

// Assert no-ops unless built without the release tag.
func Assert(cond bool, format string, args ...interface{}) {
}
