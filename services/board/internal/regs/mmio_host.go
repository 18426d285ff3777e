//go:build !baremetal

package regs

type noMMIO struct{}

const noMMIOMsg = "regs: no MMIO on host builds; use fakereg"

func (noMMIO) Load(uintptr) uint32   { panic(noMMIOMsg) }
func (noMMIO) Store(uintptr, uint32) { panic(noMMIOMsg) }
func (noMMIO) Load8(uintptr) uint8   { panic(noMMIOMsg) }
func (noMMIO) Store8(uintptr, uint8) { panic(noMMIOMsg) }

// MMIO panics on host builds. Tests inject a fakereg.Fake instead.
var MMIO Bus = noMMIO{}
