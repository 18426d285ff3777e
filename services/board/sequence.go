package board

import (
	"strconv"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/delay"
	"bringup-go/services/board/internal/flash"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/i2c"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/serial"
	"bringup-go/services/board/internal/spi"
	"bringup-go/types"
	"bringup-go/x/logx"
	"bringup-go/x/timex"
)

var log = logx.Tag("board")

// State is a bring-up stage. Stages only move forward.
type State uint8

const (
	Unstarted State = iota
	ClocksConfigured
	PinsAssigned
	PeripheralsBound
	Complete
	Aborted
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case ClocksConfigured:
		return "clocks_configured"
	case PinsAssigned:
		return "pins_assigned"
	case PeripheralsBound:
		return "peripherals_bound"
	case Complete:
		return "complete"
	case Aborted:
		return "aborted"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// committed holds the mode-assigned pins between AssignPins and
// BindPeripherals.
type committed struct {
	led             *LED
	cs              *CS
	scl, sda        *gpio.Pin[gpio.AlternateOD[gpio.AF4]]
	sck, miso, mosi *gpio.Pin[gpio.Alternate[gpio.AF5]]
	tx, rx          *gpio.Pin[gpio.Alternate[gpio.AF7]]
}

// Sequence is one bring-up run. Each step checks the current state, runs,
// and advances; a failed step moves to Aborted and every later call fails.
type Sequence struct {
	src   *pac.Source
	cfg   types.BoardConfig
	state State
	err   error

	plan  Plan
	dp    *pac.Peripherals
	rcc   *rcc.Rcc
	clk   rcc.Clocks
	ports map[byte]*gpio.Parts
	pins  committed
	h     Handles
}

// NewSequence prepares a run of cfg against src. Nothing is touched until
// ConfigureClocks.
func NewSequence(src *pac.Source, cfg types.BoardConfig) *Sequence {
	return &Sequence{src: src, cfg: cfg}
}

// State returns the current stage.
func (s *Sequence) State() State { return s.state }

// Err returns the failure that aborted the run, if any.
func (s *Sequence) Err() error { return s.err }

func (s *Sequence) step(from State, op string, fn func() error) error {
	if s.state != from {
		msg := op + " requires " + from.String() + ", sequence is " + s.state.String()
		if s.state == Aborted {
			return &errcode.E{C: errcode.InvalidState, Op: "board", Msg: msg, Err: s.err}
		}
		return errcode.New(errcode.InvalidState, "board", msg)
	}
	if err := fn(); err != nil {
		s.abort()
		s.err = errcode.Wrap("board."+op, err)
		log.Line("abort", op, s.err.Error())
		return s.err
	}
	s.state = from + 1
	log.Line("state", s.state.String())
	return nil
}

// abort drops everything built so far so no partial bring-up escapes.
func (s *Sequence) abort() {
	s.state = Aborted
	s.dp, s.rcc, s.ports = nil, nil, nil
	s.clk = rcc.Clocks{}
	s.pins = committed{}
	s.h = Handles{}
}

// ConfigureClocks validates the whole configuration, takes the peripheral
// token and freezes the clock tree.
func (s *Sequence) ConfigureClocks() error {
	return s.step(Unstarted, "configure_clocks", func() error {
		plan, err := Preflight(s.cfg)
		if err != nil {
			return err
		}
		s.plan = plan

		dp, err := s.src.Take()
		if err != nil {
			return err
		}
		s.dp = dp
		s.rcc = rcc.Constrain(dp.RCC)
		acr := flash.Constrain(dp.FLASH).ACR

		req := clockRequest(s.cfg)
		clk, err := s.rcc.CFGR.
			UseHSE(req.HSE).
			SysClk(req.SysClk).
			PClk1(req.PClk1).
			PClk2(req.PClk2).
			Tolerance(req.TolerancePPM).
			Freeze(acr)
		if err != nil {
			return err
		}
		s.clk = clk
		log.Line("clocks", clk.Summary())
		return nil
	})
}

func (s *Sequence) take(id pac.PinID) (*gpio.Pin[gpio.Reset], error) {
	ps, ok := s.ports[id.Port]
	if !ok {
		var port pac.GPIOPort
		switch id.Port {
		case 'A':
			port = s.dp.GPIOA
		case 'B':
			port = s.dp.GPIOB
		case 'C':
			port = s.dp.GPIOC
		default:
			return nil, errcode.New(errcode.UnknownPin, "board.take", id.String())
		}
		ps = gpio.Split(port, s.rcc.Gates)
		s.ports[id.Port] = ps
	}
	return ps.Take(id.N)
}

// AssignPins commits every pin in the map to its role.
func (s *Sequence) AssignPins() error {
	return s.step(ClocksConfigured, "assign_pins", func() error {
		s.ports = make(map[byte]*gpio.Parts, 3)
		p := s.plan.Pins
		c := &s.pins
		var err error

		output := func(id pac.PinID, pushPull bool) {
			if err != nil {
				return
			}
			var pin *gpio.Pin[gpio.Reset]
			if pin, err = s.take(id); err != nil {
				return
			}
			if pushPull {
				c.led, err = pin.IntoPushPullOutput()
			} else {
				c.cs, err = pin.IntoOpenDrainOutput()
			}
		}
		od4 := func(dst **gpio.Pin[gpio.AlternateOD[gpio.AF4]], id pac.PinID) {
			if err != nil {
				return
			}
			var pin *gpio.Pin[gpio.Reset]
			if pin, err = s.take(id); err == nil {
				*dst, err = gpio.IntoAlternateOpenDrain[gpio.AF4](pin)
			}
		}
		af5 := func(dst **gpio.Pin[gpio.Alternate[gpio.AF5]], id pac.PinID) {
			if err != nil {
				return
			}
			var pin *gpio.Pin[gpio.Reset]
			if pin, err = s.take(id); err == nil {
				*dst, err = gpio.IntoAlternate[gpio.AF5](pin)
			}
		}
		af7 := func(dst **gpio.Pin[gpio.Alternate[gpio.AF7]], id pac.PinID) {
			if err != nil {
				return
			}
			var pin *gpio.Pin[gpio.Reset]
			if pin, err = s.take(id); err == nil {
				*dst, err = gpio.IntoAlternate[gpio.AF7](pin)
			}
		}

		output(p.LED, true)
		od4(&c.scl, p.SCL)
		od4(&c.sda, p.SDA)
		af5(&c.sck, p.SCK)
		af5(&c.miso, p.MISO)
		af5(&c.mosi, p.MOSI)
		output(p.CS, false)
		af7(&c.tx, p.TX)
		af7(&c.rx, p.RX)
		return err
	})
}

// BindPeripherals builds every bus handle from the committed pins, parks
// the chip-select high and turns the LED on.
func (s *Sequence) BindPeripherals() error {
	return s.step(PinsAssigned, "bind_peripherals", func() error {
		g, c := s.rcc.Gates, s.pins

		d, err := delay.New(s.dp.SYST, s.clk)
		if err != nil {
			return err
		}
		bus, err := i2c.New(s.dp.I2C1, c.scl, c.sda, i2c.Config{Frequency: s.cfg.I2CHz}, s.clk, g)
		if err != nil {
			return err
		}
		sp, err := spi.New(s.dp.SPI1, c.sck, c.miso, c.mosi,
			spi.Config{Frequency: s.cfg.SPIHz, Mode: spi.Mode(s.cfg.SPIMode)}, s.clk, g)
		if err != nil {
			return err
		}
		uart, err := serial.New(s.dp.USART1, c.tx, c.rx, serial.Config{BaudRate: s.cfg.UARTBaud}, s.clk, g)
		if err != nil {
			return err
		}
		led, err := c.led.Move()
		if err != nil {
			return err
		}
		cs, err := c.cs.Move()
		if err != nil {
			return err
		}
		if err := cs.High(); err != nil {
			return err
		}
		if err := led.High(); err != nil {
			return err
		}

		s.h = Handles{LED: led, Delay: d, I2C: bus, SPI: sp, CS: cs, UART: uart, Clocks: s.clk}
		s.pins = committed{}
		log.Line("i2c", timex.MHz(bus.Frequency()), "spi", timex.MHz(sp.Frequency()),
			"uart", timex.MHz(uart.BaudRate()))
		return nil
	})
}

// Finish hands over the handles. It succeeds once per sequence.
func (s *Sequence) Finish() (Handles, error) {
	var h Handles
	err := s.step(PeripheralsBound, "finish", func() error {
		h, s.h = s.h, Handles{}
		return nil
	})
	return h, err
}
