// Package bootlock guards a pgbootstrap run with an exclusive file lock.
//
// The pipeline writes /etc/pgbackrest.conf, stages configuration files and
// restores into the data directory. Nothing in it tolerates a second run
// in the same container, so the whole run holds one flock(2) lock. The
// lock is released by the kernel if the process dies.
package bootlock
