// Package pgbackrest materializes the pgbackrest configuration for one
// boot and runs the fixed pgbackrest sub-commands the pipeline needs.
//
// The configuration is rendered from a fixed template into the INI-style
// format pgbackrest reads: one stanza, "main", backed by an S3 repository
// whose path is selected by the backup Target. Values are written verbatim
// because pgbackrest splits each line on its first "=" only; values that
// would break the line structure are rejected instead of escaped.
package pgbackrest
