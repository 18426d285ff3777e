package board

import (
	"strconv"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/i2c"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/serial"
	"bringup-go/services/board/internal/spi"
	"bringup-go/types"
)

// Pins is a parsed pin map.
type Pins struct {
	LED, SCL, SDA, SCK, MISO, MOSI, CS, TX, RX pac.PinID
}

// Plan is everything bring-up will program, derived without touching
// hardware.
type Plan struct {
	Clocks rcc.Clocks // not frozen
	Pins   Pins

	I2C    i2c.Timing
	I2CHz  uint32
	SPIBR  uint8
	SPIHz  uint32
	BRR    uint32
	BaudHz uint32
}

// Preflight validates cfg completely: clock reachability, pin parsing,
// alternate-function legality, signal routing and every bus rate. A config
// that passes only fails bring-up on a hardware timeout.
func Preflight(cfg types.BoardConfig) (Plan, error) {
	var p Plan
	if err := cfg.Validate(); err != nil {
		return p, err
	}
	clk, err := rcc.Plan(clockRequest(cfg))
	if err != nil {
		return p, err
	}
	p.Clocks = clk

	parse := func(dst *pac.PinID, s string) {
		if err != nil {
			return
		}
		*dst, err = pac.ParsePinID(s)
	}
	m := cfg.Pins
	parse(&p.Pins.LED, m.LED)
	parse(&p.Pins.SCL, m.SCL)
	parse(&p.Pins.SDA, m.SDA)
	parse(&p.Pins.SCK, m.SCK)
	parse(&p.Pins.MISO, m.MISO)
	parse(&p.Pins.MOSI, m.MOSI)
	parse(&p.Pins.CS, m.CS)
	parse(&p.Pins.TX, m.TX)
	parse(&p.Pins.RX, m.RX)
	if err != nil {
		return p, err
	}

	var (
		i2cAF  = gpio.AF4{}.Num()
		spiAF  = gpio.AF5{}.Num()
		uartAF = gpio.AF7{}.Num()
	)
	routes := []struct {
		id  pac.ID
		sig pac.Signal
		pin pac.PinID
		af  uint8
	}{
		{pac.IDI2C1, pac.SCL, p.Pins.SCL, i2cAF},
		{pac.IDI2C1, pac.SDA, p.Pins.SDA, i2cAF},
		{pac.IDSPI1, pac.SCK, p.Pins.SCK, spiAF},
		{pac.IDSPI1, pac.MISO, p.Pins.MISO, spiAF},
		{pac.IDSPI1, pac.MOSI, p.Pins.MOSI, spiAF},
		{pac.IDUSART1, pac.TX, p.Pins.TX, uartAF},
		{pac.IDUSART1, pac.RX, p.Pins.RX, uartAF},
	}
	for _, r := range routes {
		if !pac.AltFuncLegal(r.pin, r.af) {
			return p, errcode.New(errcode.InvalidAltFunc, "board.preflight",
				r.pin.String()+" has no AF"+strconv.Itoa(int(r.af))+" for "+string(r.id)+"_"+string(r.sig))
		}
		if err := pac.CheckSignal(r.id, r.sig, r.pin, r.af); err != nil {
			return p, err
		}
	}

	if p.I2C, err = i2c.Compute(clk.PClk1(), cfg.I2CHz); err != nil {
		return p, err
	}
	p.I2CHz = p.I2C.Frequency(clk.PClk1())
	if p.SPIBR, p.SPIHz, err = spi.Prescaler(clk.PClk2(), cfg.SPIHz); err != nil {
		return p, err
	}
	if p.BRR, p.BaudHz, err = serial.Divisor(clk.PClk2(), cfg.UARTBaud); err != nil {
		return p, err
	}
	return p, nil
}

func clockRequest(cfg types.BoardConfig) rcc.Request {
	return rcc.Request{
		HSE:          cfg.OscillatorHz,
		SysClk:       cfg.SysClkHz,
		PClk1:        cfg.PClk1Hz,
		PClk2:        cfg.PClk2Hz,
		TolerancePPM: cfg.TolerancePPM,
	}
}
