// Package store provides the local key/value fallback used when a submission
// cannot be delivered. SQLite (pure Go, via modernc.org/sqlite) backs durable
// runs, PostgreSQL (lib/pq) backs shared deployments and Memory serves tests
// and ephemeral sessions. Open chooses one from a DSN.
package store
