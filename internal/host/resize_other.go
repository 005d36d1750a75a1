//go:build !unix

package host

import "os"

// Without window-change signals the watcher falls back to polling.
func resizeSignals() (<-chan os.Signal, func()) {
	return nil, func() {}
}
