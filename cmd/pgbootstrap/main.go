// Command pgbootstrap is the entrypoint of the database container. It
// restores the latest pgbackrest backup into a freshly initialized data
// directory and then starts PostgreSQL in the foreground.
package main

import (
	"context"
	"os"

	"github.com/awnumar/memguard"

	"github.com/giantswarm/pgbootstrap"
	"github.com/giantswarm/pgbootstrap/internal/logging"
)

func main() {
	code := run()
	// os.Exit skips deferred calls.
	memguard.Purge()
	os.Exit(code)
}

func run() int {
	cmd := newRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	logging.Banner(os.Stdout, err.Error())
	return pgbootstrap.ExitCode(err)
}
