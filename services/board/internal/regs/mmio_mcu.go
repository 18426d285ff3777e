//go:build baremetal

package regs

import (
	"runtime/volatile"
	"unsafe"
)

type mmio struct{}

func (mmio) Load(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (mmio) Store(addr uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}

func (mmio) Load8(addr uintptr) uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(addr)))
}

func (mmio) Store8(addr uintptr, v uint8) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), v)
}

// MMIO is the chip's memory-mapped register space.
var MMIO Bus = mmio{}
