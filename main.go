package main

import (
	"os"

	"github.com/robalobadob/wordimize/internal/cli"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=v1.2.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.Date = version, commit, date
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
