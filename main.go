// Command bringup-go is the board firmware: it runs bring-up once, prints the
// boot banner on USART1, then blinks the LED and echoes UART input.
//
// The clock tree is programmed through an M/N/P/Q/R PLL configuration
// register at RCC+0x2C, the layout that gives an exact 24 MHz APB1 from an
// 8 MHz crystal. Parts that keep CFGR2 at that offset (the stock F3 layout)
// would be misprogrammed; flash this image only to a part with that PLL.
//
//	tinygo flash -target=<board> .
package main

import (
	"bringup-go/services/board"
	"bringup-go/x/logx"
)

var log = logx.Tag("main")

func main() {
	h := board.Setup()

	banner := board.Banner(h.Clocks)
	log.Line(banner)
	if _, err := h.UART.Write([]byte(banner + "\r\n")); err != nil {
		log.Line("uart", err.Error())
	}

	buf := make([]byte, 16)
	for tick := 0; ; tick++ {
		if n, _ := h.UART.Read(buf); n > 0 {
			if _, err := h.UART.Write(buf[:n]); err != nil {
				log.Line("uart", err.Error())
			}
		}
		if tick%50 == 0 {
			if err := h.LED.Toggle(); err != nil {
				log.Line("led", err.Error())
			}
		}
		h.Delay.DelayMs(10)
	}
}
