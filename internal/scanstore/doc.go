// Package scanstore persists scan history and per-file results in SQLite.
//
// Runs record the parameters and totals of each batch. File results are keyed
// by path, size, modification time, and a parameter fingerprint so an
// unchanged file scanned with unchanged settings can be reused without
// decoding it again.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package scanstore
