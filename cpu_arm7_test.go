package main

import "testing"

func newTestARM7() (*ARM7Context, *AICARAM) {
	aram := NewAICARAM()
	return NewARM7Context(aram), aram
}

func TestARM7ExecMovImmediate(t *testing.T) {
	c, _ := newTestARM7()
	c.execute(0xE3A00005) // MOV R0, #5
	if c.R[0] != 5 {
		t.Fatalf("R0 = %d, want 5", c.R[0])
	}
}

func TestARM7ExecAddSetsCarryAndZero(t *testing.T) {
	c, _ := newTestARM7()
	c.R[0] = 0xFFFFFFFF
	c.R[1] = 1
	c.execute(0xE0902001) // ADDS R2, R0, R1
	if c.R[2] != 0 {
		t.Fatalf("R2 = %08X, want 0", c.R[2])
	}
	if !c.z() {
		t.Fatal("expected Z set")
	}
	if !c.carry() {
		t.Fatal("expected C set")
	}
	if c.v() {
		t.Fatal("expected V clear")
	}
}

func TestARM7ExecBranchComputesTarget(t *testing.T) {
	c, _ := newTestARM7()
	c.pc = 0
	c.R[15] = 8 // pc+8 pipeline view, as Step stages it before dispatch
	c.execute(0xEA000002) // B #+2 words
	if c.pc != 16 {
		t.Fatalf("pc = %d, want 16", c.pc)
	}
	if !c.branched {
		t.Fatal("expected branched flag set")
	}
}

func TestARM7ExecBranchWithLinkSavesReturnAddress(t *testing.T) {
	c, _ := newTestARM7()
	c.pc = 0
	c.R[15] = 8
	c.execute(0xEB000001) // BL #+1 word
	if c.R[14] != 4 {
		t.Fatalf("LR = %08X, want 4 (R[15]-4)", c.R[14])
	}
	if c.pc != 12 {
		t.Fatalf("pc = %d, want 12", c.pc)
	}
}

func TestARM7ModeSwitchBanksR13R14AndFIQBanksR8toR12(t *testing.T) {
	c, _ := newTestARM7()
	c.CPSR = armModeSYS // start from SYS: it shares the USR bank, and MSR changes mode only outside USR
	c.R[13] = 0x1111
	c.R[14] = 0x2222
	for i := 8; i <= 12; i++ {
		c.R[i] = uint32(0x9000 + i)
	}

	c.execute(0xE321F011) // MSR CPSR_c, #0x11 (FIQ)
	if c.mode() != armModeFIQ {
		t.Fatalf("mode = %02X, want FIQ", c.mode())
	}
	// FIQ mode starts with a fresh (zeroed) R13/R14/R8-R12 bank.
	if c.R[13] != 0 || c.R[14] != 0 {
		t.Fatalf("FIQ bank r13/r14 = %X/%X, want 0/0", c.R[13], c.R[14])
	}
	for i := 8; i <= 12; i++ {
		if c.R[i] != 0 {
			t.Fatalf("FIQ bank R%d = %X, want 0", i, c.R[i])
		}
	}
	c.R[13] = 0xFFFF
	c.R[14] = 0xEEEE
	c.R[8] = 0xABCD

	c.execute(0xE321F010) // MSR CPSR_c, #0x10 (USR)
	if c.mode() != armModeUSR {
		t.Fatalf("mode = %02X, want USR", c.mode())
	}
	if c.R[13] != 0x1111 || c.R[14] != 0x2222 {
		t.Fatalf("USR r13/r14 = %X/%X, want 1111/2222", c.R[13], c.R[14])
	}
	if c.R[8] != 0x9008 {
		t.Fatalf("USR R8 = %X, want 9008 (untouched by the FIQ-mode excursion)", c.R[8])
	}
	if c.fiqR8_12[0] != 0xABCD {
		t.Fatalf("fiqR8_12[0] = %X, want ABCD (saved from the FIQ bank on exit)", c.fiqR8_12[0])
	}
}

func TestARM7SoftwareInterruptEntersSVC(t *testing.T) {
	c, _ := newTestARM7()
	c.CPSR = armModeUSR
	c.R[15] = 0x108 // pc=0x100, staged pc+8 view

	c.execute(0xEF000000) // SWI 0

	if c.mode() != armModeSVC {
		t.Fatalf("mode = %02X, want SVC", c.mode())
	}
	if c.CPSR&cpsrIBit == 0 {
		t.Fatal("expected IRQ disabled on SWI entry")
	}
	if c.R[14] != 0x104 {
		t.Fatalf("LR_svc = %08X, want 00000104", c.R[14])
	}
	if c.spsr() != armModeUSR {
		t.Fatalf("SPSR_svc = %08X, want saved USR CPSR", c.spsr())
	}
	if c.pc != vecSWI {
		t.Fatalf("pc = %08X, want vector %08X", c.pc, uint32(vecSWI))
	}
}

func TestARM7StepServicesPendingIRQAtInstructionBoundary(t *testing.T) {
	c, aram := newTestARM7()
	c.CPSR = armModeUSR // IRQ unmasked
	aram.Write32(vecIRQ, 0xE1A00000) // MOV R0, R0 (nop) at the IRQ vector
	c.SetIRQPending(true)

	c.Step(1)

	if c.mode() != armModeIRQ {
		t.Fatalf("mode = %02X, want IRQ", c.mode())
	}
	if c.R[14] != 4 {
		t.Fatalf("LR_irq = %08X, want 4 (pc(0)+4)", c.R[14])
	}
	if c.pc != vecIRQ+4 {
		t.Fatalf("pc = %08X, want %08X (vector + one retired nop)", c.pc, uint32(vecIRQ+4))
	}
}

func TestARM7BlockTransferStoreMultipleDescending(t *testing.T) {
	c, aram := newTestARM7()
	c.R[0] = 0x1111
	c.R[1] = 0x2222
	c.R[13] = 0x2000

	c.execute(0xE92D0003) // STMFD R13!, {R0, R1}

	if got := aram.Read32(0x1FF8); got != 0x1111 {
		t.Fatalf("mem[1FF8] = %08X, want 1111", got)
	}
	if got := aram.Read32(0x1FFC); got != 0x2222 {
		t.Fatalf("mem[1FFC] = %08X, want 2222", got)
	}
	if c.R[13] != 0x1FF8 {
		t.Fatalf("R13 = %08X, want 1FF8", c.R[13])
	}
}

func TestARM7BlockTransferLoadMultipleAscending(t *testing.T) {
	c, aram := newTestARM7()
	aram.Write32(0xFF8, 0xAAAA)
	aram.Write32(0xFFC, 0xBBBB)
	c.R[13] = 0xFF8

	c.execute(0xE8BD000C) // LDMFD R13!, {R2, R3}

	if c.R[2] != 0xAAAA {
		t.Fatalf("R2 = %08X, want AAAA", c.R[2])
	}
	if c.R[3] != 0xBBBB {
		t.Fatalf("R3 = %08X, want BBBB", c.R[3])
	}
	if c.R[13] != 0x1000 {
		t.Fatalf("R13 = %08X, want 1000", c.R[13])
	}
}

func TestBarrelShiftRRXRotatesThroughCarry(t *testing.T) {
	result, carryOut := barrelShift(1, 3, 0, true)
	if result != 0x80000000 {
		t.Fatalf("RRX result = %08X, want 80000000", result)
	}
	if !carryOut {
		t.Fatal("expected carry out set (bit 0 of input was 1)")
	}
}

func TestBarrelShiftLSL32ZerosAndTakesBit0AsCarry(t *testing.T) {
	result, carryOut := barrelShift(1, 0, 32, false)
	if result != 0 {
		t.Fatalf("LSL #32 result = %08X, want 0", result)
	}
	if !carryOut {
		t.Fatal("expected carry out = bit 0 of the original value")
	}
}

func TestARM7ConditionCodesGateExecution(t *testing.T) {
	c, _ := newTestARM7()
	c.CPSR |= cpsrZBit // Z set

	c.execute(0x03A00005) // MOVEQ R0, #5 (cond=EQ)
	if c.R[0] != 5 {
		t.Fatalf("EQ with Z set should execute: R0 = %d, want 5", c.R[0])
	}

	c.execute(0x13A00009) // MOVNE R0, #9 (cond=NE), should not execute
	if c.R[0] != 5 {
		t.Fatalf("NE with Z set should not execute: R0 = %d, want unchanged 5", c.R[0])
	}
}
