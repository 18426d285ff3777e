// Package board brings the board up once: it takes the peripheral token,
// freezes the clock tree, commits every pin and binds the buses, returning
// ready handles or nothing.
package board

import (
	"bringup-go/services/board/internal/delay"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/i2c"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/serial"
	"bringup-go/services/board/internal/spi"
	"bringup-go/types"
)

// Handle types. The peripheral instance and pin alternate function are
// part of each type.
type (
	LED    = gpio.Pin[gpio.PushPull]
	CS     = gpio.Pin[gpio.OpenDrain]
	I2C    = i2c.Bus[*pac.I2C1, gpio.AF4]
	SPI    = spi.Bus[*pac.SPI1, gpio.AF5]
	UART   = serial.Port[*pac.USART1, gpio.AF7]
	Delay  = delay.Delay
	Clocks = rcc.Clocks
)

// Handles is everything bring-up produces.
type Handles struct {
	LED   *LED
	Delay *Delay
	I2C   *I2C
	SPI   *SPI
	CS    *CS
	UART  *UART

	Clocks Clocks
}

// Default is the compiled-in board: 8 MHz crystal, 64 MHz SYSCLK, 24 MHz
// APB1, LED on PC13, I²C1 on PB8/PB9, SPI1 on PA5-PA7 with CS on PA15,
// USART1 on PB6/PB7.
var Default = types.BoardConfig{
	OscillatorHz: 8_000_000,
	SysClkHz:     64_000_000,
	PClk1Hz:      24_000_000,
	I2CHz:        400_000,
	SPIHz:        3_000_000,
	SPIMode:      0,
	UARTBaud:     9600,
	Pins: types.PinMap{
		LED:  "PC13",
		SCL:  "PB8",
		SDA:  "PB9",
		SCK:  "PA5",
		MISO: "PA6",
		MOSI: "PA7",
		CS:   "PA15",
		TX:   "PB6",
		RX:   "PB7",
	},
}

// Setup brings up the chip with Default. It may be called once; any failure
// halts the program.
func Setup() Handles {
	h, err := SetupFrom(pac.Device, Default)
	if err != nil {
		panic("board: " + err.Error())
	}
	return h
}

// SetupFrom runs the full sequence against src.
func SetupFrom(src *pac.Source, cfg types.BoardConfig) (Handles, error) {
	s := NewSequence(src, cfg)
	if err := s.ConfigureClocks(); err != nil {
		return Handles{}, err
	}
	if err := s.AssignPins(); err != nil {
		return Handles{}, err
	}
	if err := s.BindPeripherals(); err != nil {
		return Handles{}, err
	}
	return s.Finish()
}

// BannerPrefix starts the line the firmware prints on the UART once
// bring-up completes; host probes match on it.
const BannerPrefix = "bringup ok"

// Banner is the boot line for c.
func Banner(c Clocks) string { return BannerPrefix + " " + c.Summary() }
