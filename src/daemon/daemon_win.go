//go:build windows

package daemon

import "os"

// StopSignals contains all the signals which will make Aquarelle stop gracefully.
var StopSignals = []os.Signal{
	os.Interrupt,
}
