//go:build !windows

// Service management stubs for non-Windows platforms.
package main

// HandleServiceCommand is a no-op off Windows. Returns false so the backend
// starts in foreground mode.
func HandleServiceCommand(args []string) bool {
	return false
}
