// Command clockplan runs board bring-up against the simulated register file
// and prints the derived clock tree, the bus rate registers and the ordered
// register-write trace.
//
//	go run ./services/board/cmd/clockplan -profile board.yaml
//
// It exits 2 on a fatal bring-up error (clock_config, rate_config,
// already_taken) and 1 on anything else.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"bringup-go/errcode"
	"bringup-go/services/board"
	"bringup-go/services/board/internal/pac"
	"bringup-go/types"
	"bringup-go/x/logx"
	"bringup-go/x/timex"
)

func main() {
	profile := flag.String("profile", "", "YAML board profile (default: compiled-in board)")
	trace := flag.Bool("trace", true, "print the register-write trace")
	verbose := flag.Bool("v", false, "print bring-up log lines")
	flag.Parse()

	logx.Quiet = !*verbose

	cfg := board.Default
	if *profile != "" {
		raw, err := os.ReadFile(*profile)
		if err != nil {
			fail(err)
		}
		if cfg, err = loadProfile(raw); err != nil {
			fail(err)
		}
	}
	if err := run(os.Stdout, cfg, *trace); err != nil {
		fail(err)
	}
}

func run(w io.Writer, cfg types.BoardConfig, trace bool) error {
	p, err := board.Preflight(cfg)
	if err != nil {
		return err
	}
	pll := p.Clocks.PLL()
	fmt.Fprintf(w, "clocks   %s\n", p.Clocks.Summary())
	fmt.Fprintf(w, "pll      M=%d N=%d P=%d Q=%d R=%d\n", pll.M, pll.N, pll.P, pll.Q, pll.R)
	fmt.Fprintf(w, "i2c      TIMINGR=0x%08x (%s)\n", p.I2C.Encode(), timex.MHz(p.I2CHz))
	fmt.Fprintf(w, "spi      BR=%d (%s, mode %d)\n", p.SPIBR, timex.MHz(p.SPIHz), cfg.SPIMode)
	fmt.Fprintf(w, "uart     BRR=%d (%d baud)\n", p.BRR, p.BaudHz)
	fmt.Fprintf(w, "pins     led=%s cs=%s scl=%s sda=%s sck=%s miso=%s mosi=%s tx=%s rx=%s\n",
		p.Pins.LED, p.Pins.CS, p.Pins.SCL, p.Pins.SDA, p.Pins.SCK, p.Pins.MISO, p.Pins.MOSI, p.Pins.TX, p.Pins.RX)

	f := pac.NewSimulator()
	if _, err := board.SetupFrom(pac.NewSource(f), cfg); err != nil {
		return err
	}
	if trace {
		fmt.Fprintf(w, "writes   %d to %d registers\n", len(f.Writes), len(f.Touched()))
		for i, l := range f.Trace() {
			fmt.Fprintf(w, "%4d  %s\n", i, l)
		}
	}
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "clockplan: %v\n", err)
	if errcode.Fatal(errcode.Of(err)) {
		os.Exit(2)
	}
	os.Exit(1)
}
