//go:build darwin && cgo

package platform

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
*/
import "C"

// EnsureAccessibilityPermission reports whether the process is trusted to
// observe and inject keyboard events. Checked once at startup; a false
// result routes to the permission-request flow instead of the listener.
func EnsureAccessibilityPermission() bool {
	return C.AXIsProcessTrusted() != 0
}
