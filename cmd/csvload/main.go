// Command csvload loads a delimited file of unknown schema into a database
// table.
//
// It samples the input to infer one type per column (boolean, integer, float,
// date or text), drops and recreates the destination table, then inserts every
// row inside a single transaction.
//
//	csvload load data.csv --storage sqlite --dsn load.db --table people
//	csvload probe https://example.com/export.csv --comma auto
//	cat data.csv | csvload load - --storage postgres
//
// With --storage postgres (the default) and no --dsn, the connection string
// is assembled from PGHost, PGPort, PGDBName, PGUser, PGPW and optional
// PGSSLMODE. Every flag can also be set from a config file (--config) or a
// CSVLOAD_* environment variable; see internal/config.
//
// Exit codes: 0 success, 2 usage, 10 invalid configuration, 11 connection
// failed, 12 input error, 13 schema execution error, 14 row or transaction
// error.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// register all storage backends; --storage picks one at run time.
	_ "csvload/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}
