// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "postgres" (csvingest/internal/storage/postgres)
//   - "mssql"    (csvingest/internal/storage/mssql)
//   - "sqlite"   (csvingest/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "csvingest/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Storage, DSN: cfg.DSN()})
//
// A binary that needs only one backend can blank-import that backend instead.
package all

import (
	_ "csvingest/internal/storage/mssql"
	_ "csvingest/internal/storage/postgres"
	_ "csvingest/internal/storage/sqlite"
)
