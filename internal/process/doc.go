// Package process manages the lifecycle of a single watched child process.
//
// Process starts a command with stdout and stderr merged into one pipe,
// keeps exactly one cmd.Wait goroutine per child, and exposes Signal, Kill
// and ExitCode. WaitExit polls for exit within a grace period using the
// apimachinery wait helpers.
package process
