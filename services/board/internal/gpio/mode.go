package gpio

// Mode is the electrical role a pin is committed to. It is carried as the
// type parameter of Pin, so a pin's role is part of its Go type.
type Mode interface {
	spec() modeSpec
}

type modeSpec struct {
	moder  uint32
	otype  uint32 // 0 push-pull, 1 open-drain
	alt    bool
	af     uint8
	output bool
	name   string
}

type (
	// Reset is the undifferentiated state pins are handed out in.
	Reset struct{}
	// Input is a digital input; the pull is chosen by IntoInput.
	Input struct{}
	// Analog disconnects the digital input stage.
	Analog struct{}
	// PushPull is a driven digital output.
	PushPull struct{}
	// OpenDrain is an output that only pulls low.
	OpenDrain struct{}
	// Alternate routes the pin to a peripheral through function F.
	Alternate[F AltFunc] struct{}
	// AlternateOD is Alternate with an open-drain output stage (I²C).
	AlternateOD[F AltFunc] struct{}
)

func (Reset) spec() modeSpec  { return modeSpec{moder: modeInput, name: "reset"} }
func (Input) spec() modeSpec  { return modeSpec{moder: modeInput, name: "input"} }
func (Analog) spec() modeSpec { return modeSpec{moder: modeAnalog, name: "analog"} }

func (PushPull) spec() modeSpec {
	return modeSpec{moder: modeOutput, output: true, name: "push-pull"}
}

func (OpenDrain) spec() modeSpec {
	return modeSpec{moder: modeOutput, otype: 1, output: true, name: "open-drain"}
}

func (Alternate[F]) spec() modeSpec {
	var f F
	return modeSpec{moder: modeAF, alt: true, af: f.Num(), name: "af" + afName(f.Num())}
}

func (AlternateOD[F]) spec() modeSpec {
	var f F
	return modeSpec{moder: modeAF, otype: 1, alt: true, af: f.Num(), name: "af" + afName(f.Num()) + "-od"}
}

// Pull selects the input bias.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// AltFunc is an alternate-function selector AF0..AF15.
type AltFunc interface {
	Num() uint8
}

type (
	AF0  struct{}
	AF1  struct{}
	AF2  struct{}
	AF3  struct{}
	AF4  struct{}
	AF5  struct{}
	AF6  struct{}
	AF7  struct{}
	AF8  struct{}
	AF9  struct{}
	AF10 struct{}
	AF11 struct{}
	AF12 struct{}
	AF13 struct{}
	AF14 struct{}
	AF15 struct{}
)

func (AF0) Num() uint8  { return 0 }
func (AF1) Num() uint8  { return 1 }
func (AF2) Num() uint8  { return 2 }
func (AF3) Num() uint8  { return 3 }
func (AF4) Num() uint8  { return 4 }
func (AF5) Num() uint8  { return 5 }
func (AF6) Num() uint8  { return 6 }
func (AF7) Num() uint8  { return 7 }
func (AF8) Num() uint8  { return 8 }
func (AF9) Num() uint8  { return 9 }
func (AF10) Num() uint8 { return 10 }
func (AF11) Num() uint8 { return 11 }
func (AF12) Num() uint8 { return 12 }
func (AF13) Num() uint8 { return 13 }
func (AF14) Num() uint8 { return 14 }
func (AF15) Num() uint8 { return 15 }

func afName(n uint8) string {
	if n < 10 {
		return string('0' + n)
	}
	return "1" + string('0'+n-10)
}
