//go:build !unix

package enrich

import "os"

// Without flock, writers in one process are still serialised by the store mutex.
func flock(*os.File) error   { return nil }
func funlock(*os.File) error { return nil }
