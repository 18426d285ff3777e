//go:build baremetal

package logx

// On the MCU the runtime's print goes to the debug console (semihosting or
// the runtime UART), which is live before any peripheral is configured.
func emit(s string) {
	if Quiet {
		return
	}
	print(s)
}
