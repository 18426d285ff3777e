package serial

import (
	"io"
	"testing"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/flash"
	"bringup-go/services/board/internal/gpio"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs/fakereg"
)

type fixture struct {
	f    *fakereg.Fake
	dp   *pac.Peripherals
	r    *rcc.Rcc
	clk  rcc.Clocks
	pins *gpio.Parts
}

func newFixture(t *testing.T, sys uint32) fixture {
	t.Helper()
	f := pac.NewSimulator()
	dp, err := pac.NewSource(f).Take()
	if err != nil {
		t.Fatal(err)
	}
	r := rcc.Constrain(dp.RCC)
	clk, err := r.CFGR.UseHSE(8_000_000).SysClk(sys).Freeze(flash.Constrain(dp.FLASH).ACR)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{f: f, dp: dp, r: r, clk: clk, pins: gpio.Split(dp.GPIOB, r.Gates)}
}

func (fx fixture) af(t *testing.T, n uint8) *gpio.Pin[gpio.Alternate[gpio.AF7]] {
	t.Helper()
	p, err := fx.pins.Take(n)
	if err != nil {
		t.Fatal(err)
	}
	a, err := gpio.IntoAlternate[gpio.AF7](p)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestDivisor(t *testing.T) {
	cases := []struct {
		pclk, baud, brr uint32
	}{
		{64_000_000, 9600, 6667},
		{64_000_000, 115_200, 556},
		{8_000_000, 9600, 833},
		{8_000_000, 500_000, 16},
		{72_000_000, 4_000_000, 18},
	}
	for _, c := range cases {
		brr, actual, err := Divisor(c.pclk, c.baud)
		if err != nil {
			t.Fatalf("%d/%d: %v", c.pclk, c.baud, err)
		}
		if brr != c.brr {
			t.Fatalf("%d/%d: brr=%d want %d", c.pclk, c.baud, brr, c.brr)
		}
		if d := int64(actual) - int64(c.baud); d*50 > int64(c.baud) || -d*50 > int64(c.baud) {
			t.Fatalf("%d/%d: actual %d beyond 2%%", c.pclk, c.baud, actual)
		}
	}
}

func TestDivisorRejects(t *testing.T) {
	for _, c := range []struct{ pclk, baud uint32 }{
		{8_000_000, 484_848},   // BRR 17 (16.5 rounded) is ~2.9% off
		{8_000_000, 1_000_000}, // BRR 8 below the 16x minimum
		{64_000_000, 900},      // BRR above 0xFFFF
		{64_000_000, 0},
	} {
		if _, _, err := Divisor(c.pclk, c.baud); !errcode.Is(err, errcode.RateConfig) {
			t.Fatalf("%d/%d: want rate_config, got %v", c.pclk, c.baud, err)
		}
	}
}

func TestNewProgramsBRR(t *testing.T) {
	fx := newFixture(t, 64_000_000)
	tx, rx := fx.af(t, 6), fx.af(t, 7)
	fx.f.Reset()

	p, err := New(fx.dp.USART1, tx, rx, Config{BaudRate: 9600}, fx.clk, fx.r.Gates)
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.f.Peek(pac.USART1Base + pac.USART_BRR); got != 6667 || p.Divisor() != 6667 {
		t.Fatalf("BRR = %d", got)
	}
	if p.BaudRate() != 9600 {
		t.Fatalf("baud %d", p.BaudRate())
	}
	cr1 := fx.f.Peek(pac.USART1Base + pac.USART_CR1)
	if cr1 != pac.USART_CR1_TE|pac.USART_CR1_RE|pac.USART_CR1_UE {
		t.Fatalf("CR1 = %#x", cr1)
	}
	brr := fx.f.Index(pac.USART1Base+pac.USART_BRR, nil)
	ue := fx.f.Index(pac.USART1Base+pac.USART_CR1, func(v uint32) bool { return v&pac.USART_CR1_UE != 0 })
	if brr < 0 || ue < brr {
		t.Fatalf("order brr=%d ue=%d", brr, ue)
	}
	if !fx.r.Gates.Enabled(fx.dp.USART1) {
		t.Fatal("USART1 gate off")
	}
}

func TestNewRejectsBeforeWrites(t *testing.T) {
	fx := newFixture(t, 8_000_000)
	tx, rx := fx.af(t, 6), fx.af(t, 7)
	fx.f.Reset()

	if _, err := New(fx.dp.USART1, tx, rx, Config{BaudRate: 484_848}, fx.clk, fx.r.Gates); !errcode.Is(err, errcode.RateConfig) {
		t.Fatalf("bad baud: %v", err)
	}
	if _, err := New(fx.dp.USART1, rx, tx, Config{BaudRate: 9600}, fx.clk, fx.r.Gates); !errcode.Is(err, errcode.InvalidPin) {
		t.Fatalf("swapped pins: %v", err)
	}
	if len(fx.f.Writes) != 0 {
		t.Fatalf("failed binds wrote registers: %v", fx.f.Trace())
	}
	if tx.Check() != nil || rx.Check() != nil {
		t.Fatal("failed binds must not consume pins")
	}
}

func TestWriteAndRead(t *testing.T) {
	fx := newFixture(t, 64_000_000)
	p, err := New(fx.dp.USART1, fx.af(t, 6), fx.af(t, 7), Config{BaudRate: 115_200}, fx.clk, fx.r.Gates)
	if err != nil {
		t.Fatal(err)
	}
	fx.f.Reset()

	if _, err := io.WriteString(p, "ok\r\n"); err != nil {
		t.Fatal(err)
	}
	tdr := fx.f.WritesTo(pac.USART1Base + pac.USART_TDR)
	if string([]byte{byte(tdr[0]), byte(tdr[1])}) != "ok" || len(tdr) != 4 {
		t.Fatalf("TDR %v", tdr)
	}

	if n, _ := p.Read(make([]byte, 4)); n != 0 || p.Buffered() != 0 {
		t.Fatal("nothing received yet")
	}
	pac.Feed(fx.f, 'h')
	if p.Buffered() != 1 {
		t.Fatalf("buffered = %d", p.Buffered())
	}
	pac.Feed(fx.f, 'i')
	buf := make([]byte, 4)
	n, err := p.Read(buf)
	if err != nil || string(buf[:n]) != "hi" {
		t.Fatalf("read %q, %v", buf[:n], err)
	}
	if _, err := p.ReadByte(); !errcode.Is(err, errcode.Timeout) {
		t.Fatalf("empty ReadByte: %v", err)
	}
}

func TestOverrunCleared(t *testing.T) {
	fx := newFixture(t, 64_000_000)
	p, err := New(fx.dp.USART1, fx.af(t, 6), fx.af(t, 7), Config{BaudRate: 9600}, fx.clk, fx.r.Gates)
	if err != nil {
		t.Fatal(err)
	}
	fx.f.Poke(pac.USART1Base+pac.USART_ISR, pac.USART_ISR_ORE)
	p.Buffered()
	if w := fx.f.WritesTo(pac.USART1Base + pac.USART_ICR); len(w) != 1 || w[0] != pac.USART_ICR_ORECF {
		t.Fatalf("ICR writes %v", w)
	}
}

func TestWriteTimeout(t *testing.T) {
	old := Spins
	Spins = 4
	defer func() { Spins = old }()

	fx := newFixture(t, 64_000_000)
	p, err := New(fx.dp.USART1, fx.af(t, 6), fx.af(t, 7), Config{BaudRate: 9600}, fx.clk, fx.r.Gates)
	if err != nil {
		t.Fatal(err)
	}
	fx.f.Unforce(pac.USART1Base+pac.USART_ISR, pac.USART_ISR_TXE)
	if n, err := p.Write([]byte("x")); n != 0 || !errcode.Is(err, errcode.Timeout) {
		t.Fatalf("write = %d, %v", n, err)
	}
}
