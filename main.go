// main.go - Machine orchestrator and entry point

/*
main.go - top-level machine wiring

Machine assembles the SH-4, the ARM7DI, the PowerVR2 TA, the memory/MMIO
routing layer, the interrupt controller, the TMU and the system-bus
register file into the single cooperative loop §2 describes: the SH-4
steps on a cycle budget, the ARM7DI steps independently on its own
budget, and the TA has no thread of control of its own - it only runs
when the SH-4's writes to the command FIFO drive it.

The GDROM/BIOS image loader, host windowing/audio, and the rasteriser's
pixel backend are named external collaborators (see §1) and are not
implemented here; main() only wires the machine together and, if given
a BIOS image on the command line, loads it into area 0 and runs a bounded
number of slices - enough to exercise the wiring end to end without
pulling in any of the out-of-scope surface.
*/

package main

import (
	"fmt"
	"os"
)

// Machine is the full processor/bus core: every component named in §2's
// data-flow paragraph, wired together the way NewSystemBusRegs and
// NewMemoryBus expect.
type Machine struct {
	Mem  *MemoryBus
	Intc *InterruptController
	TMU  *TMU
	VRAM *VRAM
	TA   *PowerVR2TA
	Bus  *SystemBusRegs

	SH4  *SH4Context
	ARM7 *ARM7Context
	ARAM *AICARAM
}

// NewMachine wires every component in the dependency order §2 describes:
// numeric helpers and memory areas first, then the CPU contexts, then the
// cross-wiring that lets the TA raise interrupts and the system bus kick
// DMA helpers.
func NewMachine() *Machine {
	intc := NewInterruptController()
	tmu := NewTMU(intc)
	mem := NewMemoryBus(intc, tmu)

	vram := NewVRAM()
	mem.AttachVRAM(vram)

	ta := NewPowerVR2TA(vram)
	mem.AttachTA(ta)

	sysbus := NewSystemBusRegs(mem, vram, ta, intc)
	mem.AttachSystemBus(sysbus)
	ta.AttachASIC(sysbus)

	sh4 := NewSH4Context(mem, intc, tmu)

	aram := NewAICARAM()
	arm7 := NewARM7Context(aram)

	return &Machine{
		Mem:  mem,
		Intc: intc,
		TMU:  tmu,
		VRAM: vram,
		TA:   ta,
		Bus:  sysbus,
		SH4:  sh4,
		ARM7: arm7,
		ARAM: aram,
	}
}

func (m *Machine) Reset() {
	m.Mem.Reset()
	m.Intc.Reset()
	m.TMU.Reset()
	m.VRAM.Reset()
	m.TA.Reset()
	m.Bus.Reset()
	m.SH4.Reset()
	m.ARM7.Reset()
	m.ARAM.Reset()
}

// LoadBIOS installs a host-provided BIOS/flash image at area 0, the one
// loading responsibility this core exposes directly (the GDROM/BIOS image
// loader itself - parsing a disc image, IP.BIN, whatever format the host
// wants to hand in - is the named external collaborator).
func (m *Machine) LoadBIOS(image []byte) {
	copy(m.Mem.bios, image)
}

// RunSlice advances both CPUs by one emulated slice: the SH-4 by sh4Cycles
// and the ARM7DI by arm7Cycles, matching §2's "ARM7DI steps independently
// on its own cycle budget" - there is no barrier between the two, the
// orchestrator simply calls both step functions once per slice.
func (m *Machine) RunSlice(sh4Cycles, arm7Cycles int64) {
	m.SH4.Step(sh4Cycles)
	m.ARM7.Step(arm7Cycles)
}

func main() {
	machine := NewMachine()

	if len(os.Args) > 1 {
		image, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "dcmachine: reading BIOS image: %v\n", err)
			os.Exit(1)
		}
		machine.LoadBIOS(image)
	}

	const slices = 1000
	const sh4CyclesPerSlice = 446 // ~200MHz SH-4 at 60Hz/frame, scaled to a slice
	const arm7CyclesPerSlice = 223

	for i := 0; i < slices; i++ {
		machine.RunSlice(sh4CyclesPerSlice, arm7CyclesPerSlice)
	}
}
