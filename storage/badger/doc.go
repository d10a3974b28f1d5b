// Package badger provides BadgerDB-backed implementations of the storage
// repository interfaces. All repositories share one Backend; read-modify-write
// operations run under optimistic transaction conflict retry.
package badger
