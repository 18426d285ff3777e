//go:build !baremetal

package logx

import (
	"bytes"
	"testing"
)

func TestLineFormatting(t *testing.T) {
	var buf bytes.Buffer
	old := Output
	Output = &buf
	defer func() { Output = old }()

	Tag("board").Line("state", "clocks_configured")
	Tag("").Line("bare")
	if got, want := buf.String(), "[board] state clocks_configured\nbare\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	buf.Reset()
	Quiet = true
	Tag("board").Line("hidden")
	Quiet = false
	if buf.Len() != 0 {
		t.Fatalf("quiet mode wrote %q", buf.String())
	}
}
