// Package loader ingests CSV files into database tables.
//
// It lets the compare command accept plain files next to real tables: a
// CSV is loaded into a uniquely named scratch table, compared through the
// SQL engine like any other table, and dropped afterwards.
//
// # Type Sniffing
//
// Column types are inferred from the data itself:
//   - BIGINT when every non-empty cell parses as an integer
//   - DOUBLE PRECISION when every non-empty cell parses as a number
//   - TEXT otherwise
//
// Empty cells always load as NULL so null semantics match database-native
// tables.
//
// # Usage
//
//	table, err := loader.LoadCSV(db, "orders.csv")
//	defer loader.DropTable(db, table)
package loader
