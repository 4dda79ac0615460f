//go:build !darwin || !cgo

package platform

// EnsureAccessibilityPermission reports whether the process may observe and
// inject keyboard events. Platforms without a permission model return true;
// availability of a real event tap is reported separately by the source.
func EnsureAccessibilityPermission() bool {
	return true
}
