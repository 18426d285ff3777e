// Package pac hands out the chip's register blocks exactly once.
//
// A Source is the take-once gate. Device is the process-wide source backed by
// MMIO; tests build their own with NewSource over a fake register file.
package pac

import (
	"bringup-go/errcode"
	"bringup-go/services/board/internal/regs"
)

// ID names a peripheral instance.
type ID string

const (
	IDRCC    ID = "RCC"
	IDFLASH  ID = "FLASH"
	IDGPIOA  ID = "GPIOA"
	IDGPIOB  ID = "GPIOB"
	IDGPIOC  ID = "GPIOC"
	IDI2C1   ID = "I2C1"
	IDSPI1   ID = "SPI1"
	IDUSART1 ID = "USART1"
	IDSYST   ID = "SYST"
)

// BusID identifies the clock-gate register a peripheral hangs off.
type BusID uint8

const (
	AHB BusID = iota
	APB1
	APB2
)

func (b BusID) String() string {
	switch b {
	case AHB:
		return "AHB"
	case APB1:
		return "APB1"
	default:
		return "APB2"
	}
}

// Gate is a peripheral's clock-enable bit.
type Gate struct {
	Bus BusID
	Bit uint32
}

// Block is embedded by every peripheral type.
type Block struct {
	regs.Block
	id   ID
	gate Gate
}

func (b *Block) ID() ID           { return b.id }
func (b *Block) Gate() Gate       { return b.gate }
func (b *Block) Regs() regs.Block { return b.Block }

// Peripheral is the common view binders accept.
type Peripheral interface {
	ID() ID
	Gate() Gate
	Regs() regs.Block
}

// Distinct named types per instance so handles built from different
// instances are different Go types.
type (
	RCC    struct{ Block }
	FLASH  struct{ Block }
	GPIOA  struct{ Block }
	GPIOB  struct{ Block }
	GPIOC  struct{ Block }
	I2C1   struct{ Block }
	SPI1   struct{ Block }
	USART1 struct{ Block }
	SYST   struct{ Block }
)

// Port letters for GPIO blocks.
func (*GPIOA) Port() byte { return 'A' }
func (*GPIOB) Port() byte { return 'B' }
func (*GPIOC) Port() byte { return 'C' }

// GPIOPort is a GPIO register block.
type GPIOPort interface {
	Peripheral
	Port() byte
}

// Per-kind markers; the method sets keep an SPI block from being passed
// where an I²C block is expected.
func (*I2C1) i2c()     {}
func (*SPI1) spi()     {}
func (*USART1) usart() {}

type I2CPeripheral interface {
	Peripheral
	i2c()
}

type SPIPeripheral interface {
	Peripheral
	spi()
}

type USARTPeripheral interface {
	Peripheral
	usart()
}

// Peripherals is the complete set of raw blocks. Fields move out to the
// component that configures them.
type Peripherals struct {
	RCC    *RCC
	FLASH  *FLASH
	GPIOA  *GPIOA
	GPIOB  *GPIOB
	GPIOC  *GPIOC
	I2C1   *I2C1
	SPI1   *SPI1
	USART1 *USART1
	SYST   *SYST
}

// Source issues at most one Peripherals value.
type Source struct {
	bus   regs.Bus
	taken bool
}

// Device is the chip itself. Bring-up runs before any goroutine or
// interrupt handler exists, so the flag needs no synchronisation.
var Device = &Source{bus: regs.MMIO}

// NewSource returns an independent take-once source over bus.
func NewSource(bus regs.Bus) *Source { return &Source{bus: bus} }

// Take hands out the peripherals. Every later call fails with AlreadyTaken.
func (s *Source) Take() (*Peripherals, error) {
	if s.taken {
		return nil, errcode.New(errcode.AlreadyTaken, "pac.take", "peripherals already taken")
	}
	s.taken = true
	return newPeripherals(s.bus), nil
}

// Taken reports whether Take has succeeded.
func (s *Source) Taken() bool { return s.taken }

func blk(bus regs.Bus, base uintptr, id ID, g Gate) Block {
	return Block{Block: regs.NewBlock(bus, base), id: id, gate: g}
}

func newPeripherals(bus regs.Bus) *Peripherals {
	return &Peripherals{
		RCC:    &RCC{blk(bus, RCCBase, IDRCC, Gate{})},
		FLASH:  &FLASH{blk(bus, FLASHBase, IDFLASH, Gate{})},
		GPIOA:  &GPIOA{blk(bus, GPIOABase, IDGPIOA, Gate{AHB, RCC_AHBENR_IOPAEN})},
		GPIOB:  &GPIOB{blk(bus, GPIOBBase, IDGPIOB, Gate{AHB, RCC_AHBENR_IOPBEN})},
		GPIOC:  &GPIOC{blk(bus, GPIOCBase, IDGPIOC, Gate{AHB, RCC_AHBENR_IOPCEN})},
		I2C1:   &I2C1{blk(bus, I2C1Base, IDI2C1, Gate{APB1, RCC_APB1ENR_I2C1EN})},
		SPI1:   &SPI1{blk(bus, SPI1Base, IDSPI1, Gate{APB2, RCC_APB2ENR_SPI1EN})},
		USART1: &USART1{blk(bus, USART1Base, IDUSART1, Gate{APB2, RCC_APB2ENR_USART1EN})},
		SYST:   &SYST{blk(bus, SYSTBase, IDSYST, Gate{})},
	}
}
