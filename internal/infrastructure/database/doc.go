// Package database provides SQLite connectivity for the razerctl run
// history.
//
// This package manages:
//   - Database connection with WAL mode and busy timeout
//   - Schema migrations embedded into the binary
//   - File permissions (0600, owner read/write only)
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.History.Path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are registered via the migrations package's
// embed.FS.
package database
