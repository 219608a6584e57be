// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to
// configure MySQL and SQLite connections based on the application's
// configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database.
// It is agnostic to the schema of the tables being compared; the SQL
// relation engine resolves named tables against whatever the connection
// can see.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The SQL
// relation engine relies on GetTableColumns to derive the (name, type)
// schema of a named table before any comparison runs.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "orders")
package database
