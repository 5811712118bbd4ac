package main

import (
	"math"
	"strings"
	"testing"
)

// newTestSH4 wires a fresh SH-4 context to RAM-backed memory, the way a
// guest program would see it after boot: area 3 (0x0C......) holds system
// RAM and area 3's P1 mirror (0x8C......) reads/writes the same bytes.
func newTestSH4() *SH4Context {
	intc := NewInterruptController()
	tmu := NewTMU(intc)
	bus := NewMemoryBus(intc, tmu)
	return NewSH4Context(bus, intc, tmu)
}

// setPC points the three-stage pipeline at addr, as if a reset or branch
// had just landed there with no delay slot in flight.
func setPC(c *SH4Context, addr uint32) {
	c.pc0 = addr
	c.pc1 = addr + 2
	c.pc2 = addr + 4
	c.isDelaySlot0, c.isDelaySlot1 = false, false
}

func TestSH4MovImmediate(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0xE342) // MOV #0x42, R3

	before := c.R
	c.Step(1)

	if c.R[3] != 0x42 {
		t.Fatalf("R3 = %08X, want 00000042", c.R[3])
	}
	for i := 0; i < 16; i++ {
		if i == 3 {
			continue
		}
		if c.R[i] != before[i] {
			t.Fatalf("R%d changed to %08X, want unchanged %08X", i, c.R[i], before[i])
		}
	}
	if c.pc0 != 0x0C001002 {
		t.Fatalf("pc0 = %08X, want 0C001002", c.pc0)
	}
}

func TestSH4MovLDisp4Load(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x5521) // MOV.L @(4,R2),R5  (n=5 m=2 disp=1)
	c.R[2] = 0x0C002000
	c.bus.Write32(0x0C002004, 0xDEADBEEF)

	c.Step(1)

	if c.R[5] != 0xDEADBEEF {
		t.Fatalf("R5 = %08X, want DEADBEEF", c.R[5])
	}
	if got := c.bus.Read32(0x0C002004); got != 0xDEADBEEF {
		t.Fatalf("source word mutated to %08X, want unchanged DEADBEEF", got)
	}
}

func TestSH4JSRDelaySlot(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x8C010000)
	c.bus.Write16(0x8C010000, 0x400B) // JSR @R0
	c.bus.Write16(0x8C010002, 0xE107) // delay slot: MOV #7, R1 (stands in for NOP, proves the slot ran)
	c.R[0] = 0x8C011000

	c.Step(1) // retires JSR, pc0 becomes the delay-slot address
	if c.pc0 != 0x8C010002 {
		t.Fatalf("after JSR retires, pc0 = %08X, want 8C010002 (delay slot)", c.pc0)
	}
	c.Step(1) // retires the delay slot, pc0 becomes the branch target

	if c.pc0 != 0x8C011000 {
		t.Fatalf("pc0 = %08X, want 8C011000", c.pc0)
	}
	if c.PR != 0x8C010004 {
		t.Fatalf("PR = %08X, want 8C010004", c.PR)
	}
	if c.R[1] != 7 {
		t.Fatalf("R1 = %d, want 7 (delay slot instruction did not execute)", c.R[1])
	}
}

func TestSH4FtrcSaturation(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0xF03D) // FTRC FR0,FPUL

	c.FR[0] = float32(math.NaN())
	c.Step(1)
	if c.FPUL != 0 {
		t.Fatalf("FTRC(NaN) FPUL = %08X, want 0", c.FPUL)
	}

	setPC(c, 0x0C001002)
	c.bus.Write16(0x0C001002, 0xF03D)
	c.FR[0] = 1.0e10
	c.Step(1)
	if c.FPUL != 0x7FFFFF80 {
		t.Fatalf("FTRC(1e10) FPUL = %08X, want 7FFFFF80", c.FPUL)
	}

	setPC(c, 0x0C001004)
	c.bus.Write16(0x0C001004, 0xF03D)
	c.FR[0] = -1.0e10
	c.Step(1)
	if c.FPUL != 0x80000000 {
		t.Fatalf("FTRC(-1e10) FPUL = %08X, want 80000000", c.FPUL)
	}
}

func TestSH4RBankSwapIsInvolution(t *testing.T) {
	c := newTestSH4()
	for i := 0; i < 8; i++ {
		c.R[i] = uint32(0x1000 + i)
	}
	orig := c.R

	c.StoreSR(c.SR() | srMDBit | srRBBit) // enter privileged mode, RB=1
	c.StoreSR(c.SR() &^ srRBBit)          // RB back to 0

	for i := 0; i < 8; i++ {
		if c.R[i] != orig[i] {
			t.Fatalf("R%d = %08X after RB round trip, want %08X", i, c.R[i], orig[i])
		}
	}
}

func TestSH4FPSCRFRToggleTwiceIsInvolution(t *testing.T) {
	c := newTestSH4()
	for i := range c.FR {
		c.FR[i] = float32(i) + 0.5
		c.XF[i] = float32(i) + 100.5
	}
	origFR, origXF := c.FR, c.XF

	c.StoreFPSCR(c.FPSCR ^ fpscrFRBit)
	c.StoreFPSCR(c.FPSCR ^ fpscrFRBit)

	if c.FR != origFR || c.XF != origXF {
		t.Fatalf("FR/XF did not return to original state after double FR toggle")
	}
}

func TestSH4DispatchTableHasNoNilSlots(t *testing.T) {
	for op := 0; op < 65536; op++ {
		if sh4Dispatch[op] == nil {
			t.Fatalf("opcode %04X has a nil dispatch slot; table population left a gap", op)
		}
	}
}

func TestSH4UnknownOpcodePanicsWithPCAndOpcode(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0xFFFD) // an undefined encoding in the FPU group
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic executing an undefined opcode")
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, "FFFD") || !strings.Contains(msg, "0C001000") {
			t.Fatalf("panic message %q does not name opcode FFFD and pc 0C001000", msg)
		}
	}()
	c.Step(1)
}

func TestSH4PrefFlushesStoreQueueFromGuestCode(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x0183) // PREF @R1
	c.R[1] = 0xE0000000
	for i := uint32(0); i < storeQueueSize; i += 4 {
		c.bus.Write32(0xE0000000+i, 0xA0+i)
	}
	c.bus.WriteQACR0(0x0C)

	c.Step(1)

	dest := uint32(0x0C000000)
	for i := uint32(0); i < storeQueueSize; i += 4 {
		if got := c.bus.Read32(dest + i); got != 0xA0+i {
			t.Fatalf("flushed word at %08X = %08X, want %08X", dest+i, got, 0xA0+i)
		}
	}
}

func TestSH4StsLdsPRRoundTripThroughStack(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x4F22) // STS.L PR,@-R15
	c.bus.Write16(0x0C001002, 0x4F26) // LDS.L @R15+,PR
	c.R[15] = 0x0C002000
	c.PR = 0x8C00BEEF

	c.Step(1)
	if c.R[15] != 0x0C001FFC {
		t.Fatalf("R15 after push = %08X, want 0C001FFC", c.R[15])
	}
	c.PR = 0
	c.Step(1)

	if c.PR != 0x8C00BEEF {
		t.Fatalf("PR after pop = %08X, want 8C00BEEF", c.PR)
	}
	if c.R[15] != 0x0C002000 {
		t.Fatalf("R15 after pop = %08X, want restored 0C002000", c.R[15])
	}
}

func TestSH4FscaWritesSineCosinePair(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0xF2FD) // FSCA FPUL,DR2
	c.FPUL = 0x4000                   // a quarter turn

	c.Step(1)

	if got := c.FR[2]; got < 0.9999 || got > 1.0001 {
		t.Fatalf("sin(quarter turn) = %v, want ~1.0", got)
	}
	if got := c.FR[3]; got < -0.0001 || got > 0.0001 {
		t.Fatalf("cos(quarter turn) = %v, want ~0.0", got)
	}
}

func TestSH4FmovPairOddRegisterSelectsXFBank(t *testing.T) {
	c := newTestSH4()
	c.StoreFPSCR(c.FPSCR | fpscrSZBit)
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0xF318) // FMOV @R1,XD2 (n=3: odd selects the XF bank)
	c.R[1] = 0x0C002000
	c.bus.Write32(0x0C002000, 0x3F800000)
	c.bus.Write32(0x0C002004, 0x40000000)

	c.Step(1)

	if c.XF[2] != 1.0 || c.XF[3] != 2.0 {
		t.Fatalf("XF[2],XF[3] = %v,%v, want 1.0,2.0", c.XF[2], c.XF[3])
	}
	if c.FR[2] != 0 || c.FR[3] != 0 {
		t.Fatalf("FR[2],FR[3] = %v,%v, want untouched zeros", c.FR[2], c.FR[3])
	}
}

func TestSH4ShldNegativeShiftAndShiftRight32(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x431D) // SHLD R1,R3
	c.R[3] = 0x80000000
	c.R[1] = 0xFFFFFFFF // -1: shift right by 1

	c.Step(1)
	if c.R[3] != 0x40000000 {
		t.Fatalf("SHLD by -1 = %08X, want 40000000", c.R[3])
	}

	setPC(c, 0x0C001002)
	c.bus.Write16(0x0C001002, 0x431D)
	c.R[3] = 0xDEADBEEF
	c.R[1] = 0xFFFFFFE0 // negative with zero low bits: shift right 32
	c.Step(1)
	if c.R[3] != 0 {
		t.Fatalf("SHLD right-32 = %08X, want 0", c.R[3])
	}
}

func TestSH4InterruptEntrySavesStateAndVectors(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x0009) // NOP
	c.VBR = 0x8C000000
	c.bus.Write16(0x8C000600, 0x0009) // NOP at the interrupt vector
	c.StoreSR(c.SR() &^ srBLBit &^ 0xF0) // unblock interrupts, IMASK=0
	c.R[15] = 0x0C00FF00
	savedSR := c.SR()

	c.intc.WriteIPRA(0xF000) // TMU0 at priority 15
	c.intc.Enable(IntTMU0TUNI0)
	c.intc.Raise(IntTMU0TUNI0)

	c.Step(1) // retire the NOP; the interrupt is sampled after it

	if c.INTEVT != 0x400 {
		t.Fatalf("INTEVT = %08X, want 400 (TMU0 TUNI0)", c.INTEVT)
	}
	if c.SPC != 0x0C001002 {
		t.Fatalf("SPC = %08X, want 0C001002 (the interrupted pc)", c.SPC)
	}
	if c.SSR != savedSR {
		t.Fatalf("SSR = %08X, want saved SR %08X", c.SSR, savedSR)
	}
	if c.SGR != 0x0C00FF00 {
		t.Fatalf("SGR = %08X, want R15 at entry", c.SGR)
	}
	if !c.srBL() || !c.srMD() || !c.srRB() {
		t.Fatalf("SR after entry = %08X, want BL/MD/RB all set", c.SR())
	}
}

func TestSH4InterruptHeldOffUntilDelaySlotRetires(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x400B) // JSR @R0
	c.bus.Write16(0x0C001002, 0x0009) // delay slot: NOP
	c.R[0] = 0x0C002000
	c.VBR = 0x8C000000
	c.StoreSR(c.SR() &^ srBLBit &^ 0xF0)

	c.intc.WriteIPRA(0xF000)
	c.intc.Raise(IntTMU0TUNI0)

	c.Step(1) // JSR retires; the pending interrupt must not split it from its slot
	if c.INTEVT != 0 {
		t.Fatalf("interrupt accepted between branch and delay slot (INTEVT=%08X)", c.INTEVT)
	}
	if c.pc0 != 0x0C001002 {
		t.Fatalf("pc0 = %08X, want 0C001002 (delay slot next)", c.pc0)
	}

	c.Step(1) // the slot retires, then the interrupt vectors
	if c.INTEVT != 0x400 {
		t.Fatalf("INTEVT = %08X, want 400 after the slot retired", c.INTEVT)
	}
	if c.SPC != 0x0C002000 {
		t.Fatalf("SPC = %08X, want the branch target 0C002000", c.SPC)
	}
}

func TestSH4MacLSameRegisterReadsConsecutiveWordsAdvancesOnce(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x033F) // MAC.L @R3+,@R3+
	c.R[3] = 0x0C002000
	c.bus.Write32(0x0C002000, 3)
	c.bus.Write32(0x0C002004, 5)

	c.Step(1)

	if c.MACL != 15 || c.MACH != 0 {
		t.Fatalf("MACH:MACL = %08X:%08X, want 0:0000000F (3*5)", c.MACH, c.MACL)
	}
	if c.R[3] != 0x0C002004 {
		t.Fatalf("R3 = %08X, want 0C002004 (one increment, not two)", c.R[3])
	}
}

func TestSH4TstSetsT(t *testing.T) {
	c := newTestSH4()
	setPC(c, 0x0C001000)
	c.bus.Write16(0x0C001000, 0x2218) // TST R1,R2 (n=2,m=1)
	c.R[1] = 0x0F0
	c.R[2] = 0x00F
	c.Step(1)
	if c.srT != 1 {
		t.Fatalf("TST with disjoint masks left T=%d, want 1", c.srT)
	}

	setPC(c, 0x0C001002)
	c.bus.Write16(0x0C001002, 0x2218)
	c.R[1] = 0xFF
	c.R[2] = 0x0F
	c.Step(1)
	if c.srT != 0 {
		t.Fatalf("TST with overlapping masks left T=%d, want 0", c.srT)
	}
}

