// Package pipeline sequences the boot of a database container.
//
// A boot is a fixed list of steps run strictly in order on the calling
// goroutine:
//
//	inspect             best-effort   list and dump the data directory
//	configure           required      resolve credentials, write pgbackrest config
//	bootstrap           required      run docker-entrypoint.sh until initialized
//	inspect             best-effort
//	stage-config        required      copy <pgdata>/*.conf to the staging dir
//	verify-backup-store best-effort   pgbackrest info, optional S3 probe
//	inspect             best-effort
//	restore             required      pgbackrest restore --archive-mode off
//	inspect             best-effort
//	restore-config      required      copy staged *.conf back without overwriting
//	start-server        required      gosu postgres postgres in the foreground
//
// Each step declares its Policy. The Runner logs and swallows the error of
// a best-effort step and aborts on the first failing required step. There
// is no rollback and no retry.
package pipeline
