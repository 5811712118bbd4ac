// memory_bus.go - SH-4 memory bus: per-area routing and P4 sub-router

/*
memory_bus.go - SH-4 memory routing layer

The SH-4 splits its 32-bit address space into eight 32MiB areas selected
by addr>>29 (areas 0-7); this port further indexes by addr>>24 (256
entries) to give BIOS/RAM/VRAM mirrors their own fast-path slot without a
second lookup. Each area entry is either a direct base+mask slice access
(system RAM and its mirrors) or an MMIODevice that handles the four
access widths (video RAM, for its bank-interleaved addressing; area 0's
BIOS and register windows; the TA command FIFO once a TA is attached).

The P4 control region (area 7, addresses 0xFF000000-0xFFFFFFFF and its
aliases) has its own sub-router: 0xFF reaches the on-chip peripheral
register file (TMU, INTC and friends) and 0xE0-0xE3 are the two 32-byte
store queues, SQ0/SQ1, drained by the `pref` instruction to the address
held in QACR0/QACR1.

Structurally this mirrors the teacher's SystemBus (memory_bus.go) fast
byte-slice path, generalised from a flat 16MiB block plus page-keyed I/O
map into the area-indexed table the base spec calls for.
*/

package main

import (
	"encoding/binary"
	"fmt"
)

const (
	SystemRAMSize = 16 * 1024 * 1024
	SystemRAMMask = SystemRAMSize - 1
	BIOSSize      = 2 * 1024 * 1024
	BIOSMask      = BIOSSize - 1

	taFIFOSize = 8 * 1024 * 1024
	taFIFOMask = taFIFOSize - 1

	storeQueueSize = 32
)

// MMIODevice is the interface a memory area's slow-path handler must
// implement: one method per access width, both directions.
type MMIODevice interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Read64(addr uint32) uint64
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
	Write64(addr uint32, v uint64)
}

type memArea struct {
	base []byte      // non-nil selects the fast path
	mask uint32
	dev  MMIODevice // used when base is nil
}

// MemoryBus is the SH-4's view of the system: a 256-entry area table plus
// the P4 sub-router (on-chip peripheral registers and the two store
// queues).
type MemoryBus struct {
	areas [256]memArea

	bios   []byte
	ram    []byte
	taFIFO []byte

	sq   [2][storeQueueSize]byte
	qacr [2]uint32

	sysbus *SystemBusRegs
	intc   *InterruptController
	tmu    *TMU
	ta     *PowerVR2TA

	// pvrRegs is a placeholder data-only register file for the PVR
	// display-list/ISP register window (0x005F8000-0x005F9FFC); the
	// tile accelerator wires real behaviour onto specific offsets as
	// those registers grow meaning for list/rasteriser hand-off.
	pvrRegs [0x800]uint32
	aicaDMA [0x40]uint32
}

func NewMemoryBus(intc *InterruptController, tmu *TMU) *MemoryBus {
	mb := &MemoryBus{
		bios:   make([]byte, BIOSSize),
		ram:    make([]byte, SystemRAMSize),
		taFIFO: make([]byte, taFIFOSize),
		intc:   intc,
		tmu:    tmu,
	}
	areaZero := &areaZeroDevice{mb: mb}
	mb.areas[0x00] = memArea{dev: areaZero}
	mb.areas[0x80] = memArea{dev: areaZero} // P1 cached mirror (boot ROM, MMIO)
	mb.areas[0xA0] = memArea{dev: areaZero} // P2 uncached mirror: the reset vector and the usual MMIO window
	mb.installArea(0x0C, mb.ram, SystemRAMMask)
	mb.installArea(0x8C, mb.ram, SystemRAMMask) // P1 cached mirror
	mb.installArea(0xAC, mb.ram, SystemRAMMask) // P2 uncached mirror
	mb.installArea(0x10, mb.taFIFO, taFIFOMask) // TA command stream staging window
	return mb
}

// AttachTA replaces the plain TA FIFO staging area with a device that
// forwards each completed 32-byte command burst to the tile accelerator,
// matching §5's requirement that the TA is driven synchronously from the
// SH-4 write path rather than polled.
func (mb *MemoryBus) AttachTA(ta *PowerVR2TA) {
	mb.ta = ta
	dev := &taFIFODevice{fifo: mb.taFIFO, ta: ta}
	mb.areas[0x10] = memArea{dev: dev}
	mb.areas[0x90] = memArea{dev: dev} // P1 mirror
	mb.areas[0xB0] = memArea{dev: dev} // P2 mirror: the address guests usually burst to
}

// AttachVRAM installs area 5 (and its 0x85/0xA5 mirrors) over the
// PowerVR2 VRAM, honouring its own bank-interleaved addressing via a
// thin MMIODevice wrapper rather than a fast-path base pointer, since the
// byte offset inside VRAM is not a linear function of the guest address.
func (mb *MemoryBus) AttachVRAM(vram *VRAM) {
	mb.areas[0x05] = memArea{dev: vramDevice{vram}}
	mb.areas[0x85] = memArea{dev: vramDevice{vram}}
	mb.areas[0xA5] = memArea{dev: vramDevice{vram}}
}

func (mb *MemoryBus) AttachSystemBus(sb *SystemBusRegs) { mb.sysbus = sb }

func (mb *MemoryBus) installArea(areaByte uint32, base []byte, mask uint32) {
	mb.areas[areaByte] = memArea{base: base, mask: mask}
}

func (mb *MemoryBus) Reset() {
	for i := range mb.ram {
		mb.ram[i] = 0
	}
	for q := range mb.sq {
		for i := range mb.sq[q] {
			mb.sq[q][i] = 0
		}
	}
	mb.qacr = [2]uint32{}
}

func (mb *MemoryBus) area(addr uint32) *memArea { return &mb.areas[addr>>24] }

func (mb *MemoryBus) Read8(addr uint32) uint8 {
	a := mb.area(addr)
	if a.base != nil {
		return a.base[addr&a.mask]
	}
	if a.dev != nil {
		return a.dev.Read8(addr)
	}
	return mb.p4Read8(addr)
}

func (mb *MemoryBus) Write8(addr uint32, v uint8) {
	a := mb.area(addr)
	if a.base != nil {
		a.base[addr&a.mask] = v
		return
	}
	if a.dev != nil {
		a.dev.Write8(addr, v)
		return
	}
	mb.p4Write8(addr, v)
}

func (mb *MemoryBus) Read16(addr uint32) uint16 {
	a := mb.area(addr)
	if a.base != nil {
		return binary.LittleEndian.Uint16(a.base[addr&a.mask:])
	}
	if a.dev != nil {
		return a.dev.Read16(addr)
	}
	return mb.p4Read16(addr)
}

func (mb *MemoryBus) Write16(addr uint32, v uint16) {
	a := mb.area(addr)
	if a.base != nil {
		binary.LittleEndian.PutUint16(a.base[addr&a.mask:], v)
		return
	}
	if a.dev != nil {
		a.dev.Write16(addr, v)
		return
	}
	mb.p4Write16(addr, v)
}

func (mb *MemoryBus) Read32(addr uint32) uint32 {
	a := mb.area(addr)
	if a.base != nil {
		return binary.LittleEndian.Uint32(a.base[addr&a.mask:])
	}
	if a.dev != nil {
		return a.dev.Read32(addr)
	}
	return mb.p4Read32(addr)
}

func (mb *MemoryBus) Write32(addr uint32, v uint32) {
	a := mb.area(addr)
	if a.base != nil {
		binary.LittleEndian.PutUint32(a.base[addr&a.mask:], v)
		return
	}
	if a.dev != nil {
		a.dev.Write32(addr, v)
		return
	}
	mb.p4Write32(addr, v)
}

func (mb *MemoryBus) Read64(addr uint32) uint64 {
	a := mb.area(addr)
	if a.base != nil {
		return binary.LittleEndian.Uint64(a.base[addr&a.mask:])
	}
	if a.dev != nil {
		return a.dev.Read64(addr)
	}
	lo := uint64(mb.p4Read32(addr))
	hi := uint64(mb.p4Read32(addr + 4))
	return lo | hi<<32
}

func (mb *MemoryBus) Write64(addr uint32, v uint64) {
	a := mb.area(addr)
	if a.base != nil {
		binary.LittleEndian.PutUint64(a.base[addr&a.mask:], v)
		return
	}
	if a.dev != nil {
		a.dev.Write64(addr, v)
		return
	}
	mb.p4Write32(addr, uint32(v))
	mb.p4Write32(addr+4, uint32(v>>32))
}

// --- P4 sub-router: store queues (0xE0-0xE3) and on-chip peripherals (0xFF) ---
// These p4* methods also serve as the fallback for any area byte with
// neither a fast-path base nor a device installed: anything outside the
// two ranges above is an unmapped access and panics, per the contract in
// §7 that MMIO violations are fatal rather than silently ignored.

func (mb *MemoryBus) storeQueueSlot(addr uint32) (q int, off uint32) {
	return int((addr >> 5) & 1), addr & (storeQueueSize - 1)
}

func (mb *MemoryBus) p4Read8(addr uint32) uint8 {
	panic(fmt.Sprintf("p4 read8: no handler for address %08X", addr))
}
func (mb *MemoryBus) p4Read16(addr uint32) uint16 {
	panic(fmt.Sprintf("p4 read16: no handler for address %08X", addr))
}

func (mb *MemoryBus) p4Read32(addr uint32) uint32 {
	switch addr >> 24 {
	case 0xE0, 0xE1, 0xE2, 0xE3:
		q, off := mb.storeQueueSlot(addr)
		return binary.LittleEndian.Uint32(mb.sq[q][off:])
	case 0xFF:
		return mb.area7Read32(addr)
	}
	panic(fmt.Sprintf("p4 read32: no handler for address %08X", addr))
}

func (mb *MemoryBus) p4Write8(addr uint32, v uint8) {
	panic(fmt.Sprintf("p4 write8: no handler for address %08X", addr))
}
func (mb *MemoryBus) p4Write16(addr uint32, v uint16) {
	panic(fmt.Sprintf("p4 write16: no handler for address %08X", addr))
}

func (mb *MemoryBus) p4Write32(addr uint32, v uint32) {
	switch addr >> 24 {
	case 0xE0, 0xE1, 0xE2, 0xE3:
		q, off := mb.storeQueueSlot(addr)
		binary.LittleEndian.PutUint32(mb.sq[q][off:], v)
		return
	case 0xFF:
		mb.area7Write32(addr, v)
		return
	}
	panic(fmt.Sprintf("p4 write32: no handler for address %08X", addr))
}

// Pref implements the `pref @Rn` store-queue flush: the 32-byte burst
// captured in SQn is written, as 8 consecutive longwords, to the external
// address synthesised from QACRn's area bits and the low bits of addr.
func (mb *MemoryBus) Pref(addr uint32) {
	q, _ := mb.storeQueueSlot(addr)
	dest := (mb.qacr[q]&0x1C)<<24 | (addr & 0x03FFFFE0)
	for i := 0; i < storeQueueSize; i += 4 {
		v := binary.LittleEndian.Uint32(mb.sq[q][i:])
		mb.Write32(dest+uint32(i), v)
	}
}

func (mb *MemoryBus) WriteQACR0(v uint32) { mb.qacr[0] = v }
func (mb *MemoryBus) WriteQACR1(v uint32) { mb.qacr[1] = v }
func (mb *MemoryBus) ReadQACR0() uint32   { return mb.qacr[0] }
func (mb *MemoryBus) ReadQACR1() uint32   { return mb.qacr[1] }

// area7Router addresses: on-chip INTC and TMU registers this port wires.
// The SH-4 carries dozens more on-chip peripherals (BSC, CPG, RTC, UBC,
// DMAC registers); they fall through to the panicking default, matching
// §7's contract that unimplemented MMIO is a fatal porting gap rather
// than a silently-ignored write.
const (
	regIPRA = 0xFFD00004
	regIPRB = 0xFFD00008
	regIPRC = 0xFFD0000C

	regTSTR  = 0xFFD80004
	regTCOR0 = 0xFFD80008
	regTCNT0 = 0xFFD8000C
	regTCR0  = 0xFFD80010
	regTCOR1 = 0xFFD80014
	regTCNT1 = 0xFFD80018
	regTCR1  = 0xFFD8001C
	regTCOR2 = 0xFFD80020
	regTCNT2 = 0xFFD80024
	regTCR2  = 0xFFD80028

	regQACR0 = 0xFF000038
	regQACR1 = 0xFF00003C
)

func (mb *MemoryBus) area7Read32(addr uint32) uint32 {
	switch addr {
	case regIPRA:
		return uint32(mb.intc.ReadIPRA())
	case regIPRB:
		return uint32(mb.intc.ReadIPRB())
	case regIPRC:
		return uint32(mb.intc.ReadIPRC())
	case regTSTR:
		return uint32(mb.tmu.ReadTSTR())
	case regTCOR0:
		return mb.tmu.ReadTCOR(0)
	case regTCNT0:
		return mb.tmu.ReadTCNT(0)
	case regTCR0:
		return uint32(mb.tmu.ReadTCR(0))
	case regTCOR1:
		return mb.tmu.ReadTCOR(1)
	case regTCNT1:
		return mb.tmu.ReadTCNT(1)
	case regTCR1:
		return uint32(mb.tmu.ReadTCR(1))
	case regTCOR2:
		return mb.tmu.ReadTCOR(2)
	case regTCNT2:
		return mb.tmu.ReadTCNT(2)
	case regTCR2:
		return uint32(mb.tmu.ReadTCR(2))
	case regQACR0:
		return mb.ReadQACR0()
	case regQACR1:
		return mb.ReadQACR1()
	}
	panic(fmt.Sprintf("area7 read32: no handler for address %08X", addr))
}

func (mb *MemoryBus) area7Write32(addr uint32, v uint32) {
	switch addr {
	case regIPRA:
		mb.intc.WriteIPRA(uint16(v))
	case regIPRB:
		mb.intc.WriteIPRB(uint16(v))
	case regIPRC:
		mb.intc.WriteIPRC(uint16(v))
	case regTSTR:
		mb.tmu.WriteTSTR(uint8(v))
	case regTCOR0:
		mb.tmu.WriteTCOR(0, v)
	case regTCNT0:
		mb.tmu.WriteTCNT(0, v)
	case regTCR0:
		mb.tmu.WriteTCR(0, uint16(v))
	case regTCOR1:
		mb.tmu.WriteTCOR(1, v)
	case regTCNT1:
		mb.tmu.WriteTCNT(1, v)
	case regTCR1:
		mb.tmu.WriteTCR(1, uint16(v))
	case regTCOR2:
		mb.tmu.WriteTCOR(2, v)
	case regTCNT2:
		mb.tmu.WriteTCNT(2, v)
	case regTCR2:
		mb.tmu.WriteTCR(2, uint16(v))
	case regQACR0:
		mb.WriteQACR0(v)
	case regQACR1:
		mb.WriteQACR1(v)
	default:
		panic(fmt.Sprintf("area7 write32: no handler for address %08X", addr))
	}
}

// vramDevice adapts VRAM's bank-interleaved addressing to the MMIODevice
// interface so it can sit behind the area table's slow path.
type vramDevice struct{ v *VRAM }

func (d vramDevice) Read8(addr uint32) uint8   { return d.v.Read8(addr) }
func (d vramDevice) Read16(addr uint32) uint16 { return d.v.Read16(addr) }
func (d vramDevice) Read32(addr uint32) uint32 { return d.v.Read32(addr) }
func (d vramDevice) Read64(addr uint32) uint64 { return d.v.Read64(addr) }
func (d vramDevice) Write8(addr uint32, v uint8)   { d.v.Write8(addr, v) }
func (d vramDevice) Write16(addr uint32, v uint16) { d.v.Write16(addr, v) }
func (d vramDevice) Write32(addr uint32, v uint32) { d.v.Write32(addr, v) }
func (d vramDevice) Write64(addr uint32, v uint64) { d.v.Write64(addr, v) }

// areaZeroDevice multiplexes area 0: the boot ROM, the system-bus register
// window, and the PVR display-list/ISP register window all share the
// addr>>24 == 0x00 bucket on real hardware, so area 0 cannot use the
// table's fast base+mask path and instead sub-routes by exact offset.
type areaZeroDevice struct{ mb *MemoryBus }

func (d *areaZeroDevice) route32(addr uint32) (read func() uint32, write func(uint32)) {
	addr &= 0x01FFFFFF // fold the P1/P2 mirrors onto the physical area-0 offsets
	switch {
	case addr < BIOSSize:
		return func() uint32 { return binary.LittleEndian.Uint32(d.mb.bios[addr:]) },
			func(v uint32) { binary.LittleEndian.PutUint32(d.mb.bios[addr:], v) }
	case addr >= SB_BASE && addr < SB_BASE+SB_COUNT*4:
		return func() uint32 { return d.mb.sysbus.Read32(addr) },
			func(v uint32) { d.mb.sysbus.Write32(addr, v) }
	case addr >= 0x5F7800 && addr < 0x5F7900:
		idx := (addr - 0x5F7800) >> 2
		return func() uint32 { return d.mb.aicaDMA[idx] },
			func(v uint32) { d.mb.aicaDMA[idx] = v }
	case addr >= 0x5F8000 && addr < 0x5FA000:
		idx := (addr - 0x5F8000) >> 2
		return func() uint32 {
				if d.mb.ta != nil {
					if v, ok := d.mb.ta.ReadRegister(addr); ok {
						return v
					}
				}
				return d.mb.pvrRegs[idx]
			},
			func(v uint32) {
				if d.mb.ta != nil && d.mb.ta.WriteRegister(addr, v) {
					return
				}
				d.mb.pvrRegs[idx] = v
			}
	}
	return nil, nil
}

func (d *areaZeroDevice) Read32(addr uint32) uint32 {
	read, _ := d.route32(addr)
	if read == nil {
		panic(fmt.Sprintf("area 0 read32: no handler for address %08X", addr))
	}
	return read()
}

func (d *areaZeroDevice) Write32(addr uint32, v uint32) {
	_, write := d.route32(addr)
	if write == nil {
		panic(fmt.Sprintf("area 0 write32: no handler for address %08X", addr))
	}
	write(v)
}

func (d *areaZeroDevice) Read8(addr uint32) uint8 {
	shift := (addr & 3) * 8
	return uint8(d.Read32(addr&^3) >> shift)
}

func (d *areaZeroDevice) Write8(addr uint32, v uint8) {
	shift := (addr & 3) * 8
	word := d.Read32(addr &^ 3)
	word = word&^(0xFF<<shift) | uint32(v)<<shift
	d.Write32(addr&^3, word)
}

func (d *areaZeroDevice) Read16(addr uint32) uint16 {
	shift := (addr & 2) * 8
	return uint16(d.Read32(addr&^3) >> shift)
}

func (d *areaZeroDevice) Write16(addr uint32, v uint16) {
	shift := (addr & 2) * 8
	word := d.Read32(addr &^ 3)
	word = word&^(0xFFFF<<shift) | uint32(v)<<shift
	d.Write32(addr&^3, word)
}

func (d *areaZeroDevice) Read64(addr uint32) uint64 {
	lo := uint64(d.Read32(addr))
	hi := uint64(d.Read32(addr + 4))
	return lo | hi<<32
}

func (d *areaZeroDevice) Write64(addr uint32, v uint64) {
	d.Write32(addr, uint32(v))
	d.Write32(addr+4, uint32(v>>32))
}

// taFIFODevice stages writes into the TA command stream's 32-byte bursts
// and hands each complete burst to the tile accelerator the moment its
// last word lands, so the TA observes command blocks the instant the SH-4
// finishes writing one, never by polling.
type taFIFODevice struct {
	fifo []byte
	ta   *PowerVR2TA
}

func (d *taFIFODevice) off(addr uint32) uint32 { return addr & taFIFOMask }

func (d *taFIFODevice) Read8(addr uint32) uint8   { return d.fifo[d.off(addr)] }
func (d *taFIFODevice) Read16(addr uint32) uint16 { return binary.LittleEndian.Uint16(d.fifo[d.off(addr):]) }
func (d *taFIFODevice) Read32(addr uint32) uint32 { return binary.LittleEndian.Uint32(d.fifo[d.off(addr):]) }
func (d *taFIFODevice) Read64(addr uint32) uint64 { return binary.LittleEndian.Uint64(d.fifo[d.off(addr):]) }

func (d *taFIFODevice) Write8(addr uint32, v uint8) {
	d.fifo[d.off(addr)] = v
	d.maybeDispatch(addr)
}
func (d *taFIFODevice) Write16(addr uint32, v uint16) {
	binary.LittleEndian.PutUint16(d.fifo[d.off(addr):], v)
	d.maybeDispatch(addr)
}
func (d *taFIFODevice) Write32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(d.fifo[d.off(addr):], v)
	d.maybeDispatch(addr)
}
func (d *taFIFODevice) Write64(addr uint32, v uint64) {
	binary.LittleEndian.PutUint64(d.fifo[d.off(addr):], v)
	d.maybeDispatch(addr + 4)
}

// maybeDispatch fires on any write that lands in the last longword
// (offsets 28-31) of a 32-byte aligned block, assembling the block's
// eight little-endian words and handing them to the TA.
func (d *taFIFODevice) maybeDispatch(lastAddr uint32) {
	off := d.off(lastAddr)
	blockStart := off &^ 31
	if off < blockStart+28 {
		return
	}
	var block [8]uint32
	for i := range block {
		block[i] = binary.LittleEndian.Uint32(d.fifo[blockStart+uint32(i*4):])
	}
	d.ta.ProcessBlock(block)
}
