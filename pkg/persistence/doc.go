// Package persistence keeps a wizard session's form snapshot in a key-value
// store so a reload or a restarted server resumes where the user left off.
//
// Storage is best effort. When the store is unavailable the Adapter logs the
// failure, reports Degraded and the session keeps running in memory.
package persistence
