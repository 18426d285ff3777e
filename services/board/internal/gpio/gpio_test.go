package gpio

import (
	"strings"
	"testing"

	"bringup-go/errcode"
	"bringup-go/services/board/internal/pac"
	"bringup-go/services/board/internal/rcc"
	"bringup-go/services/board/internal/regs/fakereg"
)

type fixture struct {
	f  *fakereg.Fake
	dp *pac.Peripherals
	g  *rcc.Gates
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := pac.NewSimulator()
	dp, err := pac.NewSource(f).Take()
	if err != nil {
		t.Fatal(err)
	}
	return fixture{f: f, dp: dp, g: rcc.Constrain(dp.RCC).Gates}
}

func TestSplitEnablesPortClock(t *testing.T) {
	fx := newFixture(t)
	Split(fx.dp.GPIOC, fx.g)
	if fx.f.Peek(pac.RCCBase+pac.RCC_AHBENR)&pac.RCC_AHBENR_IOPCEN == 0 {
		t.Fatal("GPIOC clock not enabled")
	}
}

func TestTakeOncePerPin(t *testing.T) {
	fx := newFixture(t)
	pa := Split(fx.dp.GPIOA, fx.g)
	if _, err := pa.Take(5); err != nil {
		t.Fatal(err)
	}
	if _, err := pa.Take(5); !errcode.Is(err, errcode.PinInUse) {
		t.Fatalf("second take: %v", err)
	}
	if _, err := pa.Take(16); !errcode.Is(err, errcode.InvalidPin) {
		t.Fatalf("take 16: %v", err)
	}
	if _, err := pa.Take(6); err != nil {
		t.Fatalf("other pin: %v", err)
	}
}

func TestPushPullOutputWritesOnlyItsFields(t *testing.T) {
	fx := newFixture(t)
	pc := Split(fx.dp.GPIOC, fx.g)
	base := pac.GPIOCBase
	fx.f.Poke(base+pac.GPIO_MODER, 0xFFFF_FFFF)
	fx.f.Poke(base+pac.GPIO_OTYPER, 0xFFFF)
	fx.f.Reset()

	p, _ := pc.Take(13)
	led, err := p.IntoPushPullOutput()
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.f.Peek(base + pac.GPIO_MODER); got != 0xFFFF_FFFF&^(3<<26)|1<<26 {
		t.Fatalf("MODER = %#x", got)
	}
	if got := fx.f.Peek(base + pac.GPIO_OTYPER); got != 0xFFFF&^(1<<13) {
		t.Fatalf("OTYPER = %#x", got)
	}
	if fx.f.Index(base+pac.GPIO_AFRH, nil) >= 0 {
		t.Fatal("AFR written for a plain output")
	}
	if led.Mode() != "push-pull" || led.ID().String() != "PC13" {
		t.Fatalf("mode=%s id=%s", led.Mode(), led.ID())
	}
}

func TestConsumedPinRejected(t *testing.T) {
	fx := newFixture(t)
	pa := Split(fx.dp.GPIOA, fx.g)
	p, _ := pa.Take(15)
	if _, err := p.IntoOpenDrainOutput(); err != nil {
		t.Fatal(err)
	}
	n := len(fx.f.Writes)
	if _, err := p.IntoPushPullOutput(); !errcode.Is(err, errcode.PinConsumed) {
		t.Fatalf("reuse: %v", err)
	}
	if _, err := IntoAlternate[AF5](p); !errcode.Is(err, errcode.PinConsumed) {
		t.Fatalf("reuse as AF: %v", err)
	}
	if len(fx.f.Writes) != n {
		t.Fatal("consumed pin wrote registers")
	}
}

func TestAlternateFunction(t *testing.T) {
	fx := newFixture(t)
	pb := Split(fx.dp.GPIOB, fx.g)
	base := pac.GPIOBBase

	p8, _ := pb.Take(8)
	scl, err := IntoAlternateOpenDrain[AF4](p8)
	if err != nil {
		t.Fatal(err)
	}
	p6, _ := pb.Take(6)
	tx, err := IntoAlternate[AF7](p6)
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.f.Peek(base + pac.GPIO_AFRH); got != 4 {
		t.Fatalf("AFRH = %#x", got)
	}
	if got := fx.f.Peek(base + pac.GPIO_AFRL); got != 7<<24 {
		t.Fatalf("AFRL = %#x", got)
	}
	if got := fx.f.Peek(base + pac.GPIO_MODER); got != 2<<16|2<<12 {
		t.Fatalf("MODER = %#x", got)
	}
	if got := fx.f.Peek(base + pac.GPIO_OTYPER); got != 1<<8 {
		t.Fatalf("OTYPER = %#x", got)
	}
	if scl.AltFunc() != 4 || scl.Mode() != "af4-od" || tx.Mode() != "af7" {
		t.Fatalf("scl=%d/%s tx=%s", scl.AltFunc(), scl.Mode(), tx.Mode())
	}

	// MODER is written after the function select.
	afr := fx.f.Index(base+pac.GPIO_AFRH, nil)
	moder := fx.f.Index(base+pac.GPIO_MODER, nil)
	if afr < 0 || moder < afr {
		t.Fatalf("order afr=%d moder=%d", afr, moder)
	}
}

func TestIllegalAltFuncRejectedBeforeWrites(t *testing.T) {
	fx := newFixture(t)
	pc := Split(fx.dp.GPIOC, fx.g)
	p, _ := pc.Take(13)
	fx.f.Reset()

	_, err := IntoAlternate[AF7](p)
	if !errcode.Is(err, errcode.InvalidAltFunc) {
		t.Fatalf("AF7 on PC13: %v", err)
	}
	if !strings.Contains(err.Error(), "(has AF0 AF1 AF4 AF5)") {
		t.Fatalf("error does not name the legal functions: %v", err)
	}
	if len(fx.f.Writes) != 0 {
		t.Fatalf("rejected AF wrote registers: %v", fx.f.Trace())
	}
	// A rejected request leaves the pin usable.
	if _, err := IntoAlternate[AF1](p); err != nil {
		t.Fatalf("AF1 on PC13: %v", err)
	}
}

func TestInputPull(t *testing.T) {
	fx := newFixture(t)
	pa := Split(fx.dp.GPIOA, fx.g)
	p, _ := pa.Take(3)
	in, err := p.IntoInput(PullDown)
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.f.Peek(pac.GPIOABase + pac.GPIO_PUPDR); got != 2<<6 {
		t.Fatalf("PUPDR = %#x", got)
	}
	if err := in.High(); !errcode.Is(err, errcode.InvalidMode) {
		t.Fatalf("High on input: %v", err)
	}
	p4, _ := pa.Take(4)
	an, _ := p4.IntoAnalog()
	if got := fx.f.Peek(pac.GPIOABase+pac.GPIO_MODER) >> 8 & 3; got != 3 || an.Mode() != "analog" {
		t.Fatalf("analog MODER field = %d", got)
	}
}

func TestOutputLevels(t *testing.T) {
	fx := newFixture(t)
	pc := Split(fx.dp.GPIOC, fx.g)
	p, _ := pc.Take(13)
	led, _ := p.IntoPushPullOutput()

	if err := led.High(); err != nil {
		t.Fatal(err)
	}
	if got := fx.f.WritesTo(pac.GPIOCBase + pac.GPIO_BSRR); len(got) != 1 || got[0] != 1<<13 {
		t.Fatalf("BSRR writes %v", got)
	}
	if !led.Get() {
		t.Fatal("pin should read high")
	}
	if err := led.Toggle(); err != nil {
		t.Fatal(err)
	}
	if led.Get() {
		t.Fatal("pin should read low after toggle")
	}
	if err := led.Low(); err != nil {
		t.Fatal(err)
	}
	w := fx.f.WritesTo(pac.GPIOCBase + pac.GPIO_BSRR)
	if w[len(w)-1] != 1<<29 {
		t.Fatalf("reset write = %#x", w[len(w)-1])
	}
}

func TestMoveTransfersOwnership(t *testing.T) {
	fx := newFixture(t)
	pa := Split(fx.dp.GPIOA, fx.g)
	p, _ := pa.Take(5)
	sck, _ := IntoAlternate[AF5](p)
	n := len(fx.f.Writes)

	owned, err := sck.Move()
	if err != nil {
		t.Fatal(err)
	}
	if len(fx.f.Writes) != n {
		t.Fatal("Move must not touch hardware")
	}
	if err := sck.Check(); !errcode.Is(err, errcode.PinConsumed) {
		t.Fatalf("moved-from pin: %v", err)
	}
	if owned.ID() != (pac.PinID{Port: 'A', N: 5}) || owned.AltFunc() != 5 {
		t.Fatalf("moved pin %s af%d", owned.ID(), owned.AltFunc())
	}
}

func TestClaimIsAllOrNothing(t *testing.T) {
	fx := newFixture(t)
	pa := Split(fx.dp.GPIOA, fx.g)
	var pins []*Pin[Alternate[AF5]]
	for _, n := range []uint8{5, 6, 7} {
		p, _ := pa.Take(n)
		af, err := IntoAlternate[AF5](p)
		if err != nil {
			t.Fatal(err)
		}
		pins = append(pins, af)
	}

	if _, err := Claim(pins[0], pins[1], pins[0]); !errcode.Is(err, errcode.PinInUse) {
		t.Fatalf("duplicate pin: %v", err)
	}
	spent, _ := pins[2].Move()
	if _, err := Claim(pins[0], pins[1], pins[2]); !errcode.Is(err, errcode.PinConsumed) {
		t.Fatalf("consumed pin: %v", err)
	}
	if pins[0].Check() != nil || pins[1].Check() != nil {
		t.Fatal("failed claim must leave every pin with its owner")
	}

	own, err := Claim(pins[0], pins[1], spent)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range []*Pin[Alternate[AF5]]{pins[0], pins[1], spent} {
		if !errcode.Is(p.Check(), errcode.PinConsumed) {
			t.Fatalf("pin %d still owned after claim", i)
		}
		if own[i].ID() != p.ID() || own[i].Check() != nil {
			t.Fatalf("claimed pin %d = %s", i, own[i].ID())
		}
	}
}
