package pac

import "bringup-go/services/board/internal/regs/fakereg"

// NewSimulator returns a register file that behaves like an idle chip:
// ready flags follow their enable bits, SWS follows SW, bus status flags
// report ready, and registers carry readable names for traces.
func NewSimulator() *fakereg.Fake {
	f := fakereg.New()
	nameAll(f)

	// Reset state: HSI running and selected.
	f.Poke(RCCBase+RCC_CR, RCC_CR_HSION|RCC_CR_HSIRDY)

	f.OnStore(RCCBase+RCC_CR, func(f *fakereg.Fake, v uint32) {
		if v&RCC_CR_HSEON != 0 {
			v |= RCC_CR_HSERDY
		} else {
			v &^= RCC_CR_HSERDY
		}
		if v&RCC_CR_PLLON != 0 {
			v |= RCC_CR_PLLRDY
		} else {
			v &^= RCC_CR_PLLRDY
		}
		f.Poke(RCCBase+RCC_CR, v)
	})
	f.OnStore(RCCBase+RCC_CFGR, func(f *fakereg.Fake, v uint32) {
		sw := v >> RCC_CFGR_SW_Pos & RCC_CFGR_SW_Msk
		v &^= RCC_CFGR_SWS_Msk << RCC_CFGR_SWS_Pos
		f.Poke(RCCBase+RCC_CFGR, v|sw<<RCC_CFGR_SWS_Pos)
	})

	// BSRR is write-only; set/reset halves land in ODR, which the pins echo
	// back on IDR.
	for _, base := range []uintptr{GPIOABase, GPIOBBase, GPIOCBase} {
		base := base
		f.OnStore(base+GPIO_BSRR, func(f *fakereg.Fake, v uint32) {
			odr := (f.Peek(base+GPIO_ODR) | v&0xFFFF) &^ (v >> 16)
			f.Poke(base+GPIO_ODR, odr)
			f.Poke(base+GPIO_IDR, odr)
			f.Poke(base+GPIO_BSRR, 0)
		})
	}

	f.Force(I2C1Base+I2C_ISR, I2C_ISR_TXE|I2C_ISR_TXIS|I2C_ISR_RXNE|I2C_ISR_TC|I2C_ISR_STOPF)
	f.Force(SPI1Base+SPI_SR, SPI_SR_TXE|SPI_SR_RXNE)
	f.Force(USART1Base+USART_ISR, USART_ISR_TXE|USART_ISR_TC)
	// Reading RDR drains the one-byte receive holding register.
	f.OnLoad(USART1Base+USART_RDR, func(f *fakereg.Fake) {
		f.Poke(USART1Base+USART_ISR, f.Peek(USART1Base+USART_ISR)&^USART_ISR_RXNE)
	})
	f.Force(SYSTBase+SYST_CSR, SYST_CSR_COUNTFLAG)
	return f
}

// Feed queues b as the next received USART1 byte on a simulator.
func Feed(f *fakereg.Fake, b byte) {
	f.Poke(USART1Base+USART_RDR, uint32(b))
	f.Poke(USART1Base+USART_ISR, f.Peek(USART1Base+USART_ISR)|USART_ISR_RXNE)
}

func nameAll(f *fakereg.Fake) {
	type reg struct {
		off  uintptr
		name string
	}
	blocks := []struct {
		base uintptr
		id   string
		regs []reg
	}{
		{RCCBase, "RCC", []reg{{RCC_CR, "CR"}, {RCC_CFGR, "CFGR"}, {RCC_AHBENR, "AHBENR"},
			{RCC_APB2ENR, "APB2ENR"}, {RCC_APB1ENR, "APB1ENR"}, {RCC_PLLCFGR, "PLLCFGR"}}},
		{FLASHBase, "FLASH", []reg{{FLASH_ACR, "ACR"}}},
		{I2C1Base, "I2C1", []reg{{I2C_CR1, "CR1"}, {I2C_CR2, "CR2"}, {I2C_TIMINGR, "TIMINGR"},
			{I2C_ISR, "ISR"}, {I2C_ICR, "ICR"}, {I2C_RXDR, "RXDR"}, {I2C_TXDR, "TXDR"}}},
		{SPI1Base, "SPI1", []reg{{SPI_CR1, "CR1"}, {SPI_CR2, "CR2"}, {SPI_SR, "SR"}, {SPI_DR, "DR"}}},
		{USART1Base, "USART1", []reg{{USART_CR1, "CR1"}, {USART_BRR, "BRR"}, {USART_ISR, "ISR"},
			{USART_ICR, "ICR"}, {USART_RDR, "RDR"}, {USART_TDR, "TDR"}}},
		{SYSTBase, "SYST", []reg{{SYST_CSR, "CSR"}, {SYST_RVR, "RVR"}, {SYST_CVR, "CVR"}}},
	}
	gpio := []reg{{GPIO_MODER, "MODER"}, {GPIO_OTYPER, "OTYPER"}, {GPIO_OSPEEDR, "OSPEEDR"},
		{GPIO_PUPDR, "PUPDR"}, {GPIO_IDR, "IDR"}, {GPIO_ODR, "ODR"}, {GPIO_BSRR, "BSRR"},
		{GPIO_AFRL, "AFRL"}, {GPIO_AFRH, "AFRH"}}
	for _, p := range []struct {
		base uintptr
		id   string
	}{{GPIOABase, "GPIOA"}, {GPIOBBase, "GPIOB"}, {GPIOCBase, "GPIOC"}} {
		blocks = append(blocks, struct {
			base uintptr
			id   string
			regs []reg
		}{p.base, p.id, gpio})
	}
	for _, b := range blocks {
		for _, r := range b.regs {
			f.Name(b.base+r.off, b.id+"."+r.name)
		}
	}
}
