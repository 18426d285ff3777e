package types

import (
	"strings"

	"bringup-go/errcode"
)

// BoardConfig is the bring-up configuration surface. The firmware compiles
// one in; host tools load the same shape from YAML.
type BoardConfig struct {
	OscillatorHz uint32 `yaml:"oscillator_hz"`
	SysClkHz     uint32 `yaml:"sysclk_hz"`
	PClk1Hz      uint32 `yaml:"pclk1_hz"`
	PClk2Hz      uint32 `yaml:"pclk2_hz,omitempty"`      // 0 = sysclk
	TolerancePPM uint32 `yaml:"tolerance_ppm,omitempty"` // 0 = exact

	I2CHz    uint32 `yaml:"i2c_hz"`
	SPIHz    uint32 `yaml:"spi_hz"`
	SPIMode  uint8  `yaml:"spi_mode"`
	UARTBaud uint32 `yaml:"uart_baud"`

	Pins PinMap `yaml:"pin_map"`
}

// PinMap names the physical pin, e.g. "PB8", carrying each board signal.
type PinMap struct {
	LED  string `yaml:"led"`
	SCL  string `yaml:"i2c_scl"`
	SDA  string `yaml:"i2c_sda"`
	SCK  string `yaml:"spi_sck"`
	MISO string `yaml:"spi_miso"`
	MOSI string `yaml:"spi_mosi"`
	CS   string `yaml:"spi_cs"`
	TX   string `yaml:"uart_tx"`
	RX   string `yaml:"uart_rx"`
}

// Roles lists the pin assignments in a fixed order as (role, pin) pairs.
func (m PinMap) Roles() [][2]string {
	return [][2]string{
		{"led", m.LED},
		{"i2c_scl", m.SCL}, {"i2c_sda", m.SDA},
		{"spi_sck", m.SCK}, {"spi_miso", m.MISO}, {"spi_mosi", m.MOSI}, {"spi_cs", m.CS},
		{"uart_tx", m.TX}, {"uart_rx", m.RX},
	}
}

// Validate checks that every field is present and no pin is used twice.
// Reachability of clocks and rates is left to bring-up.
func (c BoardConfig) Validate() error {
	bad := func(msg string) error { return errcode.New(errcode.InvalidParams, "config", msg) }
	switch {
	case c.OscillatorHz == 0:
		return bad("oscillator_hz missing")
	case c.SysClkHz == 0:
		return bad("sysclk_hz missing")
	case c.PClk1Hz == 0:
		return bad("pclk1_hz missing")
	case c.I2CHz == 0:
		return bad("i2c_hz missing")
	case c.SPIHz == 0:
		return bad("spi_hz missing")
	case c.SPIMode > 3:
		return bad("spi_mode must be 0..3")
	case c.UARTBaud == 0:
		return bad("uart_baud missing")
	}
	seen := make(map[string]string, 9)
	for _, r := range c.Pins.Roles() {
		pin := strings.ToUpper(strings.TrimSpace(r[1]))
		if pin == "" {
			return bad("pin_map." + r[0] + " missing")
		}
		if prev, dup := seen[pin]; dup {
			return errcode.New(errcode.PinInUse, "config", pin+" assigned to both "+prev+" and "+r[0])
		}
		seen[pin] = r[0]
	}
	return nil
}
