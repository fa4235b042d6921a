// Package project detects build-system metadata for the scanned root. It is
// purely informational: the CLI logs the detected Info and it never affects
// the conformance calculation.
package project

// Info describes the detected project root.
type Info struct {
	Name     string
	Kind     string
	RootPath string
}
