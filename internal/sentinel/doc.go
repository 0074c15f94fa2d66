// Package sentinel provides a string-backed error type for const sentinel
// declarations.
//
// Every package in pgbootstrap declares its failure kinds (missing
// credential, exit timeout, held boot lock, ...) as sentinel.Error
// constants so callers can branch on them with errors.Is through any
// number of fmt.Errorf %w wraps.
package sentinel
