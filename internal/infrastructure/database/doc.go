// Package database opens the agent's SQLite file and applies schema
// migrations to it.
//
// The agent keeps a small ledger of the entities it has announced and the
// last state it published for each, so a restarted process can restore
// device state before the broker's retained messages arrive.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are pairs of files named YYYYMMDD_HHMMSS_name.up.sql and
// YYYYMMDD_HHMMSS_name.down.sql at the root of the supplied fs.FS. Each one
// is applied in its own transaction and recorded in schema_migrations.
//
// Queries always use parameterised statements. The database file is
// created with mode 0600.
package database
