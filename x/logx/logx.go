package logx

import "strings"

// Tag prefixes every line, e.g. "[board]".
type Tag string

// Line writes one space-joined line prefixed by the tag. Formatting is left
// to callers (see x/timex.MHz) so MCU builds avoid pulling in fmt.
func (t Tag) Line(parts ...string) {
	var b strings.Builder
	if t != "" {
		b.WriteByte('[')
		b.WriteString(string(t))
		b.WriteString("] ")
	}
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	b.WriteByte('\n')
	emit(b.String())
}

// Quiet suppresses all output when set. Tests and host tools toggle it.
var Quiet bool
