package pac

import (
	"testing"

	"bringup-go/errcode"
)

func TestTakeOnce(t *testing.T) {
	src := NewSource(NewSimulator())
	dp, err := src.Take()
	if err != nil || dp == nil {
		t.Fatalf("first take: %v", err)
	}
	if dp.I2C1.ID() != IDI2C1 || dp.I2C1.Regs().Base() != I2C1Base {
		t.Fatalf("I2C1 block wrong: %s @%#x", dp.I2C1.ID(), dp.I2C1.Regs().Base())
	}
	for i := 0; i < 3; i++ {
		again, err := src.Take()
		if again != nil || !errcode.Is(err, errcode.AlreadyTaken) {
			t.Fatalf("take #%d: got %v, %v", i+2, again, err)
		}
	}
	if !src.Taken() {
		t.Fatal("source must report taken")
	}
}

func TestSourcesAreIndependent(t *testing.T) {
	a, b := NewSource(NewSimulator()), NewSource(NewSimulator())
	if _, err := a.Take(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Take(); err != nil {
		t.Fatalf("second source must be untouched: %v", err)
	}
}

func TestParsePinID(t *testing.T) {
	good := map[string]PinID{
		"PA5":  {'A', 5},
		"pb15": {'B', 15},
		"PC13": {'C', 13},
		"PA0":  {'A', 0},
	}
	for s, want := range good {
		got, err := ParsePinID(s)
		if err != nil || got != want {
			t.Fatalf("ParsePinID(%q) = %v, %v", s, got, err)
		}
		if got.String() != "P"+string(want.Port)+s[2:] {
			t.Fatalf("String() = %q", got.String())
		}
	}
	for _, s := range []string{"", "PA", "PD1", "PA16", "PA05", "XA1", "PAx"} {
		if _, err := ParsePinID(s); !errcode.Is(err, errcode.UnknownPin) {
			t.Fatalf("ParsePinID(%q) should fail, got %v", s, err)
		}
	}
}

func TestAltFuncTable(t *testing.T) {
	pc13 := PinID{'C', 13}
	got := LegalAltFuncs(pc13)
	if len(got) != 4 || got[0] != 0 || got[1] != 1 || got[2] != 4 || got[3] != 5 {
		t.Fatalf("PC13 AFs = %v", got)
	}
	if AltFuncLegal(pc13, 7) {
		t.Fatal("AF7 must be illegal on PC13")
	}
	if !AltFuncLegal(PinID{'B', 8}, 4) || !AltFuncLegal(PinID{'A', 5}, 5) {
		t.Fatal("board routes must be legal")
	}
	if !AltFuncLegal(PinID{'A', 1}, 0) || AltFuncLegal(PinID{'A', 1}, 1) {
		t.Fatal("unlisted pins support only AF0")
	}
	if AltFuncLegal(PinID{'A', 5}, 16) {
		t.Fatal("AF16 does not exist")
	}
}

func TestSignalRoutesAreLegalAltFuncs(t *testing.T) {
	for id, sigs := range signals {
		for sig, routes := range sigs {
			for _, r := range routes {
				if !AltFuncLegal(r.Pin, r.AF) {
					t.Fatalf("%s_%s on %s AF%d not in AF matrix", id, sig, r.Pin, r.AF)
				}
			}
		}
	}
}

func TestCheckSignal(t *testing.T) {
	if err := CheckSignal(IDI2C1, SCL, PinID{'B', 8}, 4); err != nil {
		t.Fatal(err)
	}
	if err := CheckSignal(IDUSART1, TX, PinID{'B', 6}, 7); err != nil {
		t.Fatal(err)
	}
	err := CheckSignal(IDI2C1, SCL, PinID{'B', 9}, 4)
	if !errcode.Is(err, errcode.InvalidPin) {
		t.Fatalf("PB9 is SDA, not SCL: %v", err)
	}
	if err := CheckSignal(IDSPI1, SCK, PinID{'A', 5}, 4); err == nil {
		t.Fatal("SPI1_SCK is on AF5")
	}
}

func TestSimulatorReadyFlags(t *testing.T) {
	f := NewSimulator()
	f.Store(RCCBase+RCC_CR, RCC_CR_HSEON)
	if f.Load(RCCBase+RCC_CR)&RCC_CR_HSERDY == 0 {
		t.Fatal("HSERDY should follow HSEON")
	}
	f.Store(RCCBase+RCC_CFGR, RCC_CFGR_SW_PLL)
	if sws := f.Load(RCCBase+RCC_CFGR) >> RCC_CFGR_SWS_Pos & RCC_CFGR_SWS_Msk; sws != RCC_CFGR_SW_PLL {
		t.Fatalf("SWS = %d", sws)
	}
	Feed(f, 'x')
	if f.Load(USART1Base+USART_ISR)&USART_ISR_RXNE == 0 {
		t.Fatal("RXNE after feed")
	}
	if f.Load(USART1Base+USART_RDR) != 'x' || f.Load(USART1Base+USART_ISR)&USART_ISR_RXNE != 0 {
		t.Fatal("RDR read should drain RXNE")
	}
	if f.NameOf(GPIOBBase+GPIO_AFRH) != "GPIOB.AFRH" {
		t.Fatalf("name = %q", f.NameOf(GPIOBBase+GPIO_AFRH))
	}
}
