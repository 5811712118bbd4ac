package main

import "testing"

func newTestSystemBusRegs() (*SystemBusRegs, *MemoryBus, *VRAM) {
	intc := NewInterruptController()
	tmu := NewTMU(intc)
	mem := NewMemoryBus(intc, tmu)
	vram := NewVRAM()
	mem.AttachVRAM(vram)
	sb := NewSystemBusRegs(mem, vram, nil, intc)
	mem.AttachSystemBus(sb)
	return sb, mem, vram
}

func TestSystemBusRegsPlainDataRoundTrip(t *testing.T) {
	sb, _, _ := newTestSystemBusRegs()
	addr := uint32(SB_BASE + 0x40)

	sb.Write32(addr, 0xABCD1234)
	if got := sb.Read32(addr); got != 0xABCD1234 {
		t.Fatalf("Read32 = %08X, want ABCD1234", got)
	}
}

func TestSystemBusRegsWriteOnlyKickerReadPanics(t *testing.T) {
	sb, _, _ := newTestSystemBusRegs()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading SB_C2DST, a write-only kicker")
		}
	}()
	sb.Read32(SB_C2DST)
}

func TestSystemBusRegsCh2DMACopiesIntoVRAM(t *testing.T) {
	sb, mem, vram := newTestSystemBusRegs()

	for i := uint32(0); i < 16; i += 4 {
		mem.Write32(0x10000000+i, 0x1000+i)
	}
	sb.Write32(SB_C2DSTAT, 0x002000)
	sb.Write32(SB_C2DLEN, 16)
	sb.Write32(SB_C2DST, 1)

	for i := uint32(0); i < 16; i += 4 {
		if got := vram.Read32(0x002000 + i); got != 0x1000+i {
			t.Fatalf("vram[%X] = %08X, want %08X", 0x002000+i, got, 0x1000+i)
		}
	}
	if got := sb.Read32(SB_C2DLEN); got != 16 {
		t.Fatalf("SB_C2DLEN after kick = %d, want unchanged 16", got)
	}
}

func TestSystemBusRegsRaiseNormalLatchesAndClears(t *testing.T) {
	sb, _, _ := newTestSystemBusRegs()

	sb.RaiseNormal(HollyOpaqueBit)
	if got := sb.Read32(SB_ISTNRM); got&(1<<HollyOpaqueBit) == 0 {
		t.Fatalf("ISTNRM = %08X, expected opaque-list bit set", got)
	}

	sb.Write32(SB_ISTNRM, 1<<HollyOpaqueBit)
	if got := sb.Read32(SB_ISTNRM); got&(1<<HollyOpaqueBit) != 0 {
		t.Fatalf("ISTNRM = %08X, expected opaque-list bit cleared by write-1-to-clear", got)
	}
}

func TestSystemBusRegsRaiseNormalAssertsIRL(t *testing.T) {
	sb, _, _ := newTestSystemBusRegs()

	sb.RaiseNormal(HollyOpaqueBit)
	if !sb.intc.IsPending(IntIRL2) {
		t.Fatal("expected IntIRL2 pending after an unmasked ASIC normal-status event")
	}
}

func TestSystemBusRegsConstantRegisterWritePanics(t *testing.T) {
	sb, _, _ := newTestSystemBusRegs()
	sb.regs[0].flags = rioConst
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing a constant register")
		}
	}()
	sb.Write32(SB_BASE, 1)
}
