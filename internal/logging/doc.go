// Package logging holds the pgbootstrap package-level slog logger and the
// lipgloss-rendered banners that mark pipeline phases on stdout.
package logging
