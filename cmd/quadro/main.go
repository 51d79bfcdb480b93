package main

import (
	"fmt"
	"os"

	app "github.com/Amna-05/quadro/internal"
	"github.com/Amna-05/quadro/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersionInfo(version, commit, date)

	application, err := app.NewApp(app.ResolveBasePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing quadro: %v\n", err)
		return 1
	}
	defer application.Close()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
