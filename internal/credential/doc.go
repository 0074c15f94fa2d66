// Package credential resolves the backup-store credentials for one boot.
//
// A Resolver looks a name up in the process environment and, when it is
// unset and stdin is a terminal, asks the operator for it. Values are kept
// in memguard-locked memory behind Secret, which redacts itself in logs
// and formatted output. Each name is resolved at most once per Resolver.
package credential
