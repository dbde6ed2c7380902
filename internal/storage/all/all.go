// Package all links every storage backend into the binary.
package all

import (
	_ "csvload/internal/storage/duckdb"
	_ "csvload/internal/storage/mssql"
	_ "csvload/internal/storage/postgres"
	_ "csvload/internal/storage/sqlite"
)
