//go:build !baremetal

package logx

import (
	"io"
	"os"
)

// Output receives log lines on host builds.
var Output io.Writer = os.Stderr

func emit(s string) {
	if Quiet || Output == nil {
		return
	}
	_, _ = io.WriteString(Output, s)
}
