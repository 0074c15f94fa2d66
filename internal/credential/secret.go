package credential

import (
	"log/slog"
	"sync"

	"github.com/awnumar/memguard"
)

// redacted replaces a secret value in every rendering of a Secret.
const redacted = "[REDACTED]"

// Secret holds a credential value in locked memory. The zero value and a
// nil *Secret are empty. Safe for concurrent use.
type Secret struct {
	mu        sync.Mutex
	buf       *memguard.LockedBuffer
	destroyed bool
}

// Compile-time interface satisfaction check.
var _ slog.LogValuer = (*Secret)(nil)

// NewSecret copies value into locked memory.
func NewSecret(value string) *Secret {
	if value == "" {
		return &Secret{}
	}
	// NewBufferFromBytes wipes its argument, so hand it a private copy.
	return &Secret{buf: memguard.NewBufferFromBytes([]byte(value))}
}

// Reveal returns a copy of the value. It returns "" after Destroy.
func (s *Secret) Reveal() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.buf == nil || s.buf.Size() == 0 {
		return ""
	}
	return string(s.buf.Bytes())
}

// Destroy wipes and releases the value. Further calls are no-ops.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.buf != nil {
		s.buf.Destroy()
	}
}

// String implements fmt.Stringer and never returns the value.
func (s *Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer for %#v.
func (s *Secret) GoString() string {
	return "credential.Secret(" + redacted + ")"
}

// LogValue implements slog.LogValuer.
func (s *Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}
