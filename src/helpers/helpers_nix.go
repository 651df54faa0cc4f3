//go:build !windows

package helpers

import "os"

// AquarelleDir is the name of the Aquarelle directory in the user's home directory
const AquarelleDir = ".aquarelle"

func userBaseDir() (string, error) {
	return os.UserHomeDir()
}
