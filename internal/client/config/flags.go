package config

import (
	"flag"
	"os"
	"time"

	"github.com/EdProwise/beawar-school-sub001/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-u string   API base URL, e.g. http://localhost:5000/api
//	-s string   session database file
//	-t int      request timeout in seconds
//
// Only these flags are parsed; os.Args is filtered with flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.SessionDBPath, "s", cfg.SessionDBPath, "session database file")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
