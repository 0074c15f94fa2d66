// Package objstore checks the backup store directly over S3.
//
// The pipeline's verification step normally only asks pgbackrest for its
// repository info. When enabled, Prober additionally confirms with the
// same credentials that the bucket exists and that the repository prefix
// holds at least one object, which tells an empty or mistyped repository
// apart from a network problem.
package objstore
