// Package all links every built-in storage backend into the binary.
//
// Importing it (as a blank import) runs the init functions of each backend,
// which register their factories and DDL dialects with the storage package:
//
//   - "sqlite"   (healthetl/internal/storage/sqlite)
//   - "postgres" (healthetl/internal/storage/postgres)
//   - "mssql"    (healthetl/internal/storage/mssql)
//   - "mysql"    (healthetl/internal/storage/mysql)
package all

import (
	_ "healthetl/internal/storage/mssql"
	_ "healthetl/internal/storage/mysql"
	_ "healthetl/internal/storage/postgres"
	_ "healthetl/internal/storage/sqlite"
)
