//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

// StopSignals contains all the signals which will make Aquarelle stop gracefully.
var StopSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}
