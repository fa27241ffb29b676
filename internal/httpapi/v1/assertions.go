package v1

import (
	"github.com/arnaudGHB/glconfig/internal/storage/memory"
	"github.com/arnaudGHB/glconfig/internal/storage/postgres"
)

// Compile-time interface assertions for the storage backends against the API
// store union.
var (
	_ Store        = (*memory.Store)(nil)
	_ Store        = (*postgres.Store)(nil)
	_ ReadyChecker = (*postgres.Store)(nil)
)
