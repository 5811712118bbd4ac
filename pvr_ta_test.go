package main

import "testing"

// fakeHolly captures the ASIC events a PowerVR2TA raises, standing in for
// the SystemBusRegs aggregator so tests can observe them directly.
type fakeHolly struct {
	normal []int
	errors []int
}

func (f *fakeHolly) RaiseNormal(bit int) { f.normal = append(f.normal, bit) }
func (f *fakeHolly) RaiseError(bit int)  { f.errors = append(f.errors, bit) }

func newTestTA() (*PowerVR2TA, *fakeHolly) {
	vram := NewVRAM()
	ta := NewPowerVR2TA(vram)
	holly := &fakeHolly{}
	ta.AttachASIC(holly)
	return ta, holly
}

// startOpaqueList brings the TA from its sticky post-construction Error
// state to Idle with a small opaque tile matrix and ISP buffer, mirroring
// the register writes software performs before feeding a display list.
func startOpaqueList(ta *PowerVR2TA) {
	ta.WriteRegister(TA_GLOB_TILE_CLIP, 0x00030003) // 4x4 tiles
	ta.WriteRegister(TA_OL_BASE, 0x00001000)
	ta.WriteRegister(TA_OL_LIMIT, 0x00002000)
	ta.WriteRegister(TA_ISP_BASE, 0x00003000)
	ta.WriteRegister(TA_ISP_LIMIT, 0x00004000)
	ta.WriteRegister(TA_ALLOC_CTRL, 0x3) // grow-up, 32-word tile matrix entries
	ta.WriteRegister(TA_NEXT_OPB_INIT, 0x00002000)
	ta.WriteRegister(TA_LIST_INIT, 1)
}

// TestTAOpaqueTriangleProducesExpectedWordsAndOneTileEntry walks scenario
// 4: one textured-packed opaque context followed by a 3-vertex strip with
// end-of-strip on the third vertex, then an end-of-list block.
func TestTAOpaqueTriangleProducesExpectedWordsAndOneTileEntry(t *testing.T) {
	ta, holly := newTestTA()
	startOpaqueList(ta)

	if ta.state != taInList && ta.state != taIdle {
		t.Fatalf("state after TA_LIST_INIT = %d, want Idle", ta.state)
	}

	ispStart := ta.regs.ispCurrent

	var ctx [8]uint32
	ctx[0] = 0x80000008 // class=4 (context), list=opaque(0), textured bit set, packed colour
	ta.ProcessBlock(ctx)

	if ta.currentVertexType != taVertexTexPacked {
		t.Fatalf("currentVertexType = %#x, want taVertexTexPacked", ta.currentVertexType)
	}
	if ta.polyVertexSize != 3 {
		t.Fatalf("polyVertexSize = %d, want 3", ta.polyVertexSize)
	}

	verts := [][3]float32{{1, 1, 0.5}, {10, 1, 0.5}, {1, 10, 0.5}}
	for i, v := range verts {
		var b [8]uint32
		b[0] = 0xE0000000
		if i == len(verts)-1 {
			b[0] |= 0x10000000 // end of strip
		}
		b[1], b[2], b[3] = floatBits(v[0]), floatBits(v[1]), floatBits(v[2])
		b[4], b[5], b[6] = 0x11111111, 0x22222222, 0x33333333
		ta.ProcessBlock(b)
	}

	wantWords := uint32(ta.polyContextSize + len(verts)*(3+ta.polyVertexSize))
	gotWords := (ta.regs.ispCurrent - ispStart) / 4
	if gotWords != wantWords {
		t.Fatalf("polygon buffer grew by %d words, want %d (3 context + 3*(3+3) vertex)", gotWords, wantWords)
	}

	tile := ta.currentTileMatrix // tile (0,0): all three vertices land in the first 32x32 tile
	entry := ta.vram.Read32(tile)
	if entry&0x80000000 == 0 {
		t.Fatalf("tile(0,0) entry %08X missing the single-triangle tag bit", entry)
	}
	if sentinel := ta.vram.Read32(tile + 4); sentinel != 0xF0000000 {
		t.Fatalf("word after the one tile entry = %08X, want F0000000 end sentinel", sentinel)
	}

	// No other tile in the 4x4 matrix should have been touched.
	for y := int32(0); y < ta.height; y++ {
		for x := int32(0); x < ta.width; x++ {
			if x == 0 && y == 0 {
				continue
			}
			off := ta.currentTileMatrix + (ta.currentTileSize*uint32(y*ta.width+x))<<2
			if got := ta.vram.Read32(off); got != 0xF0000000 {
				t.Fatalf("tile(%d,%d) = %08X, want untouched F0000000 sentinel", x, y, got)
			}
		}
	}

	var end [8]uint32
	end[0] = 0 // class 0: end of list
	ta.ProcessBlock(end)

	if len(holly.normal) != 1 || holly.normal[0] != HollyOpaqueBit {
		t.Fatalf("ASIC normal events = %v, want exactly [HollyOpaqueBit]", holly.normal)
	}
	if len(holly.errors) != 0 {
		t.Fatalf("ASIC error events = %v, want none", holly.errors)
	}
	if ta.state != taIdle {
		t.Fatalf("state after end-of-list = %d, want Idle", ta.state)
	}
}

// TestTAStartsInStickyErrorUntilReset matches §9: a freshly constructed TA
// discards blocks until an explicit list-init register write.
func TestTAStartsInStickyErrorUntilReset(t *testing.T) {
	ta, holly := newTestTA()

	if ta.state != taError {
		t.Fatalf("fresh TA state = %d, want Error", ta.state)
	}

	var ctx [8]uint32
	ctx[0] = 0x80000008
	ta.ProcessBlock(ctx) // must be silently discarded

	if ta.state != taError {
		t.Fatalf("state after a block in Error = %d, want still Error", ta.state)
	}
	if len(holly.normal) != 0 || len(holly.errors) != 0 {
		t.Fatalf("Error-state block raised ASIC events %v/%v, want none", holly.normal, holly.errors)
	}

	startOpaqueList(ta)
	if ta.state != taInList && ta.state != taIdle {
		t.Fatalf("state after explicit list init = %d, want Idle/InList", ta.state)
	}
}
