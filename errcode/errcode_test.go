package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"clock_config":     ClockConfig,
		"rate_config":      RateConfig,
		"already_taken":    AlreadyTaken,
		"invalid_alt_func": InvalidAltFunc,
		"invalid_pin":      InvalidPin,
		"invalid_mode":     InvalidMode,
		"invalid_state":    InvalidState,
		"pin_consumed":     PinConsumed,
		"pin_in_use":       PinInUse,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfUnwrapsContext(t *testing.T) {
	base := New(RateConfig, "usart1", "baud error 3.1%")
	if Of(base) != RateConfig {
		t.Fatalf("Of(E) = %q", Of(base))
	}
	wrapped := Wrap("bind", base)
	if Of(wrapped) != RateConfig {
		t.Fatalf("Of(Wrap) = %q", Of(wrapped))
	}
	viaFmt := fmt.Errorf("setup: %w", ClockConfig)
	if !Is(viaFmt, ClockConfig) {
		t.Fatalf("fmt-wrapped code lost: %q", Of(viaFmt))
	}
	if Of(nil) != OK {
		t.Fatal("Of(nil) must be OK")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("plain error must map to Error")
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("Wrap must keep the cause reachable")
	}
}

func TestErrorText(t *testing.T) {
	e := &E{C: ClockConfig, Op: "rcc", Msg: "sysclk 100000000 Hz above limit"}
	if got, want := e.Error(), "rcc: clock_config: sysclk 100000000 Hz above limit"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFatal(t *testing.T) {
	for _, c := range []Code{ClockConfig, RateConfig, AlreadyTaken} {
		if !Fatal(c) {
			t.Fatalf("%q should be fatal", c)
		}
	}
	if Fatal(InvalidAltFunc) {
		t.Fatal("invalid_alt_func is structural, not fatal class")
	}
}
