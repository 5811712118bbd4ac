package main

import "testing"

func newTestBus() *MemoryBus {
	intc := NewInterruptController()
	tmu := NewTMU(intc)
	return NewMemoryBus(intc, tmu)
}

func TestMemoryBusRAMFastPath(t *testing.T) {
	bus := newTestBus()

	bus.Write32(0x0C001000, 0x12345678)
	if got := bus.Read32(0x0C001000); got != 0x12345678 {
		t.Fatalf("Read32 = %08X, want 12345678", got)
	}
}

func TestMemoryBusRAMMirrors(t *testing.T) {
	bus := newTestBus()

	bus.Write32(0x0C002000, 0xCAFEBABE)
	if got := bus.Read32(0x8C002000); got != 0xCAFEBABE {
		t.Fatalf("P1 mirror Read32 = %08X, want CAFEBABE", got)
	}
	if got := bus.Read32(0xAC002000); got != 0xCAFEBABE {
		t.Fatalf("P2 mirror Read32 = %08X, want CAFEBABE", got)
	}
}

func TestMemoryBusVRAMAreaRoutesThroughBankMap(t *testing.T) {
	bus := newTestBus()
	vram := NewVRAM()
	bus.AttachVRAM(vram)

	bus.Write32(0xA5000100, 0x11223344)
	if got := vram.Read32(0x000100); got != 0x11223344 {
		t.Fatalf("VRAM side Read32 = %08X, want 11223344 (area write did not reach backing VRAM)", got)
	}
	if got := bus.Read32(0x05000100); got != 0x11223344 {
		t.Fatalf("area 5 Read32 = %08X, want 11223344", got)
	}
}

func TestMemoryBusTMURegistersRouteToTMU(t *testing.T) {
	bus := newTestBus()

	bus.Write32(regTCOR0, 1000)
	bus.Write32(regTCNT0, 1000)
	bus.Write32(regTSTR, 1) // enable channel 0

	if got := bus.Read32(regTCNT0); got != 1000 {
		t.Fatalf("TCNT0 readback = %d, want 1000", got)
	}
	bus.tmu.Step(4)
	if got := bus.Read32(regTCNT0); got != 999 {
		t.Fatalf("TCNT0 after one prescale tick = %d, want 999", got)
	}
}

func TestMemoryBusStoreQueueCaptureAndPref(t *testing.T) {
	bus := newTestBus()

	sq0Base := uint32(0xE0000000)
	for i := uint32(0); i < storeQueueSize; i += 4 {
		bus.Write32(sq0Base+i, i+1)
	}
	bus.WriteQACR0(0x0C) // area bits select the 0x0C RAM area

	bus.Pref(sq0Base)

	dest := (bus.ReadQACR0()&0x1C)<<24 | (sq0Base & 0x03FFFFE0)
	for i := uint32(0); i < storeQueueSize; i += 4 {
		if got := bus.Read32(dest + i); got != i+1 {
			t.Fatalf("flushed word at offset %d = %d, want %d", i, got, i+1)
		}
	}
}

func TestMemoryBusP2MirrorReachesBootROMAndSystemBus(t *testing.T) {
	bus := newTestBus()
	sb := NewSystemBusRegs(bus, nil, nil, bus.intc)
	bus.AttachSystemBus(sb)

	bus.bios[0x100] = 0x5A
	if got := bus.Read8(0xA0000100); got != 0x5A {
		t.Fatalf("P2 boot ROM Read8 = %02X, want 5A", got)
	}
	if got := bus.Read8(0x80000100); got != 0x5A {
		t.Fatalf("P1 boot ROM Read8 = %02X, want 5A", got)
	}

	bus.Write32(0xA05F6840, 0x1234ABCD) // the uncached window guests use for Holly registers
	if got := bus.Read32(0x005F6840); got != 0x1234ABCD {
		t.Fatalf("physical system-bus readback = %08X, want 1234ABCD", got)
	}
}

func TestMemoryBusUnmappedP4PanicsOnAccess(t *testing.T) {
	bus := newTestBus()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading an unwired on-chip register")
		}
	}()
	bus.Read32(0xFF123456)
}
