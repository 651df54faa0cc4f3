// Package daemon holds the command line flags of Aquarelle and the signals on which
// it stops.
package daemon

import "flag"

var (
	// Debug makes Aquarelle log to stderr instead of its log file.
	Debug bool

	// ConfigPath is a configuration file used instead of the one in the user
	// directory.
	ConfigPath string

	// ShowVersion prints the version and exits.
	ShowVersion bool

	// Serve runs the HTTP server instead of processing the catalog once.
	Serve bool

	// EntityID and Source store the artwork at Source for entity EntityID.
	EntityID string
	Source   string

	// FetchID downloads the artwork of a single entity.
	FetchID string
)

func init() {
	flag.BoolVar(&Debug, "D", false, "Debug mode. Logs to stderr instead of the log file.")
	flag.StringVar(&ConfigPath, "config", "", "Use this configuration file instead of "+
		"the one in the user directory.")
	flag.BoolVar(&ShowVersion, "v", false, "Show version and build information.")
	flag.BoolVar(&Serve, "serve", false, "Run the HTTP server.")
	flag.StringVar(&EntityID, "entity", "", "ID of the artist or album for which "+
		"-source will be stored.")
	flag.StringVar(&Source, "source", "", "URL or absolute path of an image which will "+
		"be stored as the artwork of -entity.")
	flag.StringVar(&FetchID, "fetch", "", "Find and store the artwork of this "+
		"artist or album only.")
}
