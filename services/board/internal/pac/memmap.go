package pac

// Register map of the board's MCU. Offsets are relative to the block base.

const (
	RCCBase    uintptr = 0x4002_1000
	FLASHBase  uintptr = 0x4002_2000
	GPIOABase  uintptr = 0x4800_0000
	GPIOBBase  uintptr = 0x4800_0400
	GPIOCBase  uintptr = 0x4800_0800
	I2C1Base   uintptr = 0x4000_5400
	SPI1Base   uintptr = 0x4001_3000
	USART1Base uintptr = 0x4001_3800
	SYSTBase   uintptr = 0xE000_E010
)

// RCC
const (
	RCC_CR      uintptr = 0x00
	RCC_CFGR    uintptr = 0x04
	RCC_AHBENR  uintptr = 0x14
	RCC_APB2ENR uintptr = 0x18
	RCC_APB1ENR uintptr = 0x1C
	RCC_PLLCFGR uintptr = 0x2C

	RCC_CR_HSION  uint32 = 1 << 0
	RCC_CR_HSIRDY uint32 = 1 << 1
	RCC_CR_HSEON  uint32 = 1 << 16
	RCC_CR_HSERDY uint32 = 1 << 17
	RCC_CR_PLLON  uint32 = 1 << 24
	RCC_CR_PLLRDY uint32 = 1 << 25

	RCC_CFGR_SW_Pos  = 0
	RCC_CFGR_SW_Msk  = 0x3
	RCC_CFGR_SWS_Pos = 2
	RCC_CFGR_SWS_Msk = 0x3

	RCC_CFGR_SW_HSI uint32 = 0
	RCC_CFGR_SW_HSE uint32 = 1
	RCC_CFGR_SW_PLL uint32 = 2

	// PLLCFGR fields hold factor-1 for M, P, Q, R and the raw value for N.
	RCC_PLLCFGR_PLLM_Pos          = 0
	RCC_PLLCFGR_PLLM_Msk          = 0xF
	RCC_PLLCFGR_PLLN_Pos          = 4
	RCC_PLLCFGR_PLLN_Msk          = 0x7F
	RCC_PLLCFGR_PLLP_Pos          = 12
	RCC_PLLCFGR_PLLP_Msk          = 0xF
	RCC_PLLCFGR_PLLQ_Pos          = 16
	RCC_PLLCFGR_PLLQ_Msk          = 0xF
	RCC_PLLCFGR_PLLR_Pos          = 20
	RCC_PLLCFGR_PLLR_Msk          = 0xF
	RCC_PLLCFGR_PLLSRC_HSE uint32 = 1 << 24

	RCC_AHBENR_IOPAEN    uint32 = 1 << 17
	RCC_AHBENR_IOPBEN    uint32 = 1 << 18
	RCC_AHBENR_IOPCEN    uint32 = 1 << 19
	RCC_APB2ENR_SPI1EN   uint32 = 1 << 12
	RCC_APB2ENR_USART1EN uint32 = 1 << 14
	RCC_APB1ENR_I2C1EN   uint32 = 1 << 21
)

// FLASH
const (
	FLASH_ACR uintptr = 0x00

	FLASH_ACR_LATENCY_Pos        = 0
	FLASH_ACR_LATENCY_Msk        = 0x7
	FLASH_ACR_PRFTBE      uint32 = 1 << 4
)

// GPIO
const (
	GPIO_MODER   uintptr = 0x00
	GPIO_OTYPER  uintptr = 0x04
	GPIO_OSPEEDR uintptr = 0x08
	GPIO_PUPDR   uintptr = 0x0C
	GPIO_IDR     uintptr = 0x10
	GPIO_ODR     uintptr = 0x14
	GPIO_BSRR    uintptr = 0x18
	GPIO_AFRL    uintptr = 0x20
	GPIO_AFRH    uintptr = 0x24

	GPIO_MODE_INPUT  uint32 = 0
	GPIO_MODE_OUTPUT uint32 = 1
	GPIO_MODE_AF     uint32 = 2
	GPIO_MODE_ANALOG uint32 = 3

	GPIO_PULL_NONE uint32 = 0
	GPIO_PULL_UP   uint32 = 1
	GPIO_PULL_DOWN uint32 = 2
)

// I2C (timing-register variant)
const (
	I2C_CR1     uintptr = 0x00
	I2C_CR2     uintptr = 0x04
	I2C_TIMINGR uintptr = 0x10
	I2C_ISR     uintptr = 0x18
	I2C_ICR     uintptr = 0x1C
	I2C_RXDR    uintptr = 0x24
	I2C_TXDR    uintptr = 0x28

	I2C_CR1_PE uint32 = 1 << 0

	I2C_CR2_SADD_Msk   uint32 = 0x3FF
	I2C_CR2_RD_WRN     uint32 = 1 << 10
	I2C_CR2_START      uint32 = 1 << 13
	I2C_CR2_STOP       uint32 = 1 << 14
	I2C_CR2_NBYTES_Pos        = 16
	I2C_CR2_AUTOEND    uint32 = 1 << 25

	I2C_TIMINGR_PRESC_Pos  = 28
	I2C_TIMINGR_SCLDEL_Pos = 20
	I2C_TIMINGR_SDADEL_Pos = 16
	I2C_TIMINGR_SCLH_Pos   = 8
	I2C_TIMINGR_SCLL_Pos   = 0

	I2C_ISR_TXE   uint32 = 1 << 0
	I2C_ISR_TXIS  uint32 = 1 << 1
	I2C_ISR_RXNE  uint32 = 1 << 2
	I2C_ISR_NACKF uint32 = 1 << 4
	I2C_ISR_STOPF uint32 = 1 << 5
	I2C_ISR_TC    uint32 = 1 << 6

	I2C_ICR_NACKCF uint32 = 1 << 4
	I2C_ICR_STOPCF uint32 = 1 << 5
)

// SPI
const (
	SPI_CR1 uintptr = 0x00
	SPI_CR2 uintptr = 0x04
	SPI_SR  uintptr = 0x08
	SPI_DR  uintptr = 0x0C

	SPI_CR1_CPHA   uint32 = 1 << 0
	SPI_CR1_CPOL   uint32 = 1 << 1
	SPI_CR1_MSTR   uint32 = 1 << 2
	SPI_CR1_BR_Pos        = 3
	SPI_CR1_BR_Msk        = 0x7
	SPI_CR1_SPE    uint32 = 1 << 6
	SPI_CR1_SSI    uint32 = 1 << 8
	SPI_CR1_SSM    uint32 = 1 << 9

	SPI_CR2_DS_8BIT uint32 = 0x7 << 8
	SPI_CR2_FRXTH   uint32 = 1 << 12

	SPI_SR_RXNE uint32 = 1 << 0
	SPI_SR_TXE  uint32 = 1 << 1
	SPI_SR_BSY  uint32 = 1 << 7
)

// USART
const (
	USART_CR1 uintptr = 0x00
	USART_BRR uintptr = 0x0C
	USART_ISR uintptr = 0x1C
	USART_ICR uintptr = 0x20
	USART_RDR uintptr = 0x24
	USART_TDR uintptr = 0x28

	USART_CR1_UE uint32 = 1 << 0
	USART_CR1_RE uint32 = 1 << 2
	USART_CR1_TE uint32 = 1 << 3

	USART_ISR_ORE  uint32 = 1 << 3
	USART_ISR_RXNE uint32 = 1 << 5
	USART_ISR_TC   uint32 = 1 << 6
	USART_ISR_TXE  uint32 = 1 << 7

	USART_ICR_ORECF uint32 = 1 << 3
)

// SysTick
const (
	SYST_CSR uintptr = 0x0
	SYST_RVR uintptr = 0x4
	SYST_CVR uintptr = 0x8

	SYST_CSR_ENABLE    uint32 = 1 << 0
	SYST_CSR_CLKSOURCE uint32 = 1 << 2
	SYST_CSR_COUNTFLAG uint32 = 1 << 16

	SYST_RVR_Max uint32 = 0x00FF_FFFF
)
