// Package memory implements the store interfaces in process memory. It is
// used when no database URL is configured and in tests.
package memory
