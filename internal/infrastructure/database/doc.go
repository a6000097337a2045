// Package database provides SQLite connectivity for homecast.
//
// It opens the database with WAL mode and a busy timeout, applies
// versioned migrations from an fs.FS and exposes a small wrapper around
// *sql.DB. The group store is its only consumer.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql.
package database
