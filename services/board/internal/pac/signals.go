package pac

import (
	"strconv"

	"bringup-go/errcode"
)

// PinID names a physical pin, e.g. PB8.
type PinID struct {
	Port byte  // 'A'..'C'
	N    uint8 // 0..15
}

func (p PinID) String() string {
	return "P" + string(p.Port) + strconv.Itoa(int(p.N))
}

// ParsePinID accepts "PA5", "pb15" and similar.
func ParsePinID(s string) (PinID, error) {
	bad := errcode.New(errcode.UnknownPin, "pac.parse_pin", s)
	if len(s) < 3 || len(s) > 4 || (s[0] != 'P' && s[0] != 'p') {
		return PinID{}, bad
	}
	port := s[1]
	if port >= 'a' && port <= 'z' {
		port -= 'a' - 'A'
	}
	if port < 'A' || port > 'C' {
		return PinID{}, bad
	}
	var n uint8
	for _, c := range s[2:] {
		if c < '0' || c > '9' {
			return PinID{}, bad
		}
		n = n*10 + uint8(c-'0')
	}
	if n > 15 || (len(s) == 4 && s[2] == '0') {
		return PinID{}, bad
	}
	return PinID{Port: port, N: n}, nil
}

// Signal is a peripheral function carried on a pin.
type Signal string

const (
	SCL  Signal = "SCL"
	SDA  Signal = "SDA"
	SCK  Signal = "SCK"
	MISO Signal = "MISO"
	MOSI Signal = "MOSI"
	TX   Signal = "TX"
	RX   Signal = "RX"
)

func afs(n ...uint8) uint16 {
	var m uint16
	for _, v := range n {
		m |= 1 << v
	}
	return m
}

// altFuncs is the datasheet's alternate-function matrix for the pins this
// board can route. Pins absent here only support AF0.
var altFuncs = map[PinID]uint16{
	{'A', 5}:  afs(1, 3, 5),
	{'A', 6}:  afs(1, 2, 5, 6, 8),
	{'A', 7}:  afs(1, 2, 5, 6, 8),
	{'A', 9}:  afs(2, 3, 4, 5, 6, 7, 8, 9, 10, 15),
	{'A', 10}: afs(2, 3, 4, 5, 6, 7, 8, 10, 11, 15),
	{'A', 14}: afs(0, 3, 4, 5, 6, 7),
	{'A', 15}: afs(0, 1, 2, 4, 5, 6, 7),
	{'B', 3}:  afs(0, 1, 2, 3, 5, 6, 7),
	{'B', 4}:  afs(0, 1, 2, 3, 5, 6, 7),
	{'B', 5}:  afs(1, 2, 3, 4, 5, 6, 7),
	{'B', 6}:  afs(1, 2, 3, 4, 5, 7, 10),
	{'B', 7}:  afs(1, 2, 3, 4, 5, 7, 10),
	{'B', 8}:  afs(1, 2, 3, 4, 7, 8, 9, 12),
	{'B', 9}:  afs(1, 2, 4, 6, 7, 8, 9),
	{'C', 4}:  afs(1, 7),
	{'C', 5}:  afs(1, 3, 7),
	{'C', 13}: afs(0, 1, 4, 5),
}

// AltFuncLegal reports whether the pin can be muxed to alternate function af.
func AltFuncLegal(p PinID, af uint8) bool {
	if af > 15 {
		return false
	}
	m, ok := altFuncs[p]
	if !ok {
		return af == 0
	}
	return m&(1<<af) != 0
}

// LegalAltFuncs lists the alternate functions available on p.
func LegalAltFuncs(p PinID) []uint8 {
	var out []uint8
	for af := uint8(0); af < 16; af++ {
		if AltFuncLegal(p, af) {
			out = append(out, af)
		}
	}
	return out
}

type route struct {
	Pin PinID
	AF  uint8
}

// signals maps a peripheral signal to the pins (and AF numbers) wired to it.
var signals = map[ID]map[Signal][]route{
	IDI2C1: {
		SCL: {{PinID{'A', 15}, 4}, {PinID{'B', 6}, 4}, {PinID{'B', 8}, 4}},
		SDA: {{PinID{'A', 14}, 4}, {PinID{'B', 7}, 4}, {PinID{'B', 9}, 4}},
	},
	IDSPI1: {
		SCK:  {{PinID{'A', 5}, 5}, {PinID{'B', 3}, 5}},
		MISO: {{PinID{'A', 6}, 5}, {PinID{'B', 4}, 5}},
		MOSI: {{PinID{'A', 7}, 5}, {PinID{'B', 5}, 5}},
	},
	IDUSART1: {
		TX: {{PinID{'A', 9}, 7}, {PinID{'B', 6}, 7}, {PinID{'C', 4}, 7}},
		RX: {{PinID{'A', 10}, 7}, {PinID{'B', 7}, 7}, {PinID{'C', 5}, 7}},
	},
}

// CheckSignal verifies that pin, muxed to af, carries sig of peripheral id.
func CheckSignal(id ID, sig Signal, pin PinID, af uint8) error {
	for _, r := range signals[id][sig] {
		if r.Pin == pin && r.AF == af {
			return nil
		}
	}
	return errcode.New(errcode.InvalidPin, "pac.signal",
		string(id)+"_"+string(sig)+" is not routed to "+pin.String()+" on AF"+strconv.Itoa(int(af)))
}
