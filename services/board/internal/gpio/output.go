package gpio

import "bringup-go/errcode"

func (p *Pin[M]) output(op string) error {
	if err := p.Check(); err != nil {
		return err
	}
	var m M
	if !m.spec().output {
		return errcode.New(errcode.InvalidMode, op, p.ID().String()+" is "+m.spec().name+", not an output")
	}
	return nil
}

// Set drives the pin high or low through BSRR.
func (p *Pin[M]) Set(high bool) error {
	if err := p.output("gpio.set"); err != nil {
		return err
	}
	if high {
		p.parts.bsrr.Set(1 << p.n)
	} else {
		p.parts.bsrr.Set(1 << (p.n + 16))
	}
	return nil
}

func (p *Pin[M]) High() error { return p.Set(true) }
func (p *Pin[M]) Low() error  { return p.Set(false) }

// Toggle inverts the driven level.
func (p *Pin[M]) Toggle() error {
	if err := p.output("gpio.toggle"); err != nil {
		return err
	}
	return p.Set(p.parts.odr.Get()&(1<<p.n) == 0)
}

// Get reads the pin's input level.
func (p *Pin[M]) Get() bool {
	if p.Check() != nil {
		return false
	}
	return p.parts.idr.Get()&(1<<p.n) != 0
}
