package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bannerSignature is centered in the top bar of every banner.
const bannerSignature = "[ pgbootstrap ]"

// BannerWidth is the width in columns of the banner bars.
const BannerWidth = 80

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("6")).
			Foreground(lipgloss.Color("15"))
	messageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))
)

// Banner writes an operator-facing phase banner to w: a blank line, a cyan
// bar carrying the signature, the message, a closing bar and a blank line.
// Banners are interleaved with the mirrored bootstrap output on stdout so
// phase changes stand out in container logs.
//
// Write errors are ignored; a banner is never worth failing a boot over.
func Banner(w io.Writer, msg string) {
	pad := (BannerWidth - len(bannerSignature)) / 2
	top := strings.Repeat(" ", pad) + bannerSignature +
		strings.Repeat(" ", BannerWidth-len(bannerSignature)-pad)

	_, _ = fmt.Fprintf(w, "\n%s\n%s\n%s\n\n",
		barStyle.Render(top),
		messageStyle.Render("  >> "+msg),
		barStyle.Render(strings.Repeat(" ", BannerWidth)),
	)
}

// Announcer writes banners to a fixed writer.
type Announcer struct {
	w io.Writer
}

// NewAnnouncer returns an Announcer writing to w. A nil w discards banners.
func NewAnnouncer(w io.Writer) *Announcer {
	if w == nil {
		w = io.Discard
	}
	return &Announcer{w: w}
}

// Announce writes msg as a banner.
func (a *Announcer) Announce(msg string) {
	if a == nil {
		return
	}
	Banner(a.w, msg)
}
