package host

import (
	"log/slog"
	"strings"
)

// NewHandler returns a slog.Handler that formats each record as one
// logfmt line and hands it to the bridge's message sink. Timestamps are
// dropped because the host stamps its own log.
func NewHandler(b Bridge, opts *slog.HandlerOptions) slog.Handler {
	var o slog.HandlerOptions
	if opts != nil {
		o = *opts
	}
	replace := o.ReplaceAttr
	o.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		if replace != nil {
			return replace(groups, a)
		}
		return a
	}
	return slog.NewTextHandler(messageWriter{b}, &o)
}

// The text handler issues exactly one Write per record.
type messageWriter struct {
	b Bridge
}

func (w messageWriter) Write(p []byte) (int, error) {
	w.b.OnMessage(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
