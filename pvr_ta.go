// pvr_ta.go - PowerVR2 Tile Accelerator: display-list command processor

/*
pvr_ta.go - PowerVR2 Tile Accelerator

The TA has no thread of control: it is driven synchronously, one 32-byte
command block at a time, by the SH-4 write path (memory_bus.go's
taFIFODevice hands each completed burst straight to ProcessBlock). Each
block carries a class tag in its top three bits that selects one of five
shapes (end-of-list, tile clip, polygon context, sprite context, vertex),
and the parser walks a small state machine (Idle -> InList -> InPolygon,
with two "expect a continuation block" states for wide vertex formats)
that mirrors the teacher's own state-machine components
(coprocessor_manager.go's worker lifecycle, video_voodoo.go's per-command
register/vertex accumulation) generalised to the tile-list grammar this
chip actually speaks.

Polygon commit walks every vertex's (x,y) into tile coordinates, unions
per-triangle bounding boxes into a polygon bounding box, clips it against
the user clip rectangle, appends the polygon's context+vertex words to
the linear ISP buffer in VRAM, then threads a tile-entry word into every
tile's object-pointer-block list the polygon's bounding box touches.
Resource exhaustion (PRIM_NOMEM, MATR_NOMEM) and malformed command
sequences (ILLEGAL_PARAM) raise ASIC status bits rather than aborting the
emulated frame, per §7's recoverable-error contract; the TA's own "sticky
Error state" is the one condition this parser does not try to recover
from, by design (§9).
*/

package main

import (
	"fmt"
	"math"
)

func floatBits(v float32) uint32      { return math.Float32bits(v) }
func floatFromBits(bits uint32) float32 { return math.Float32frombits(bits) }

func isNegInf32(v float32) bool { return math.IsInf(float64(v), -1) }
func isPosInf32(v float32) bool { return math.IsInf(float64(v), 1) }

func clampUnit32(v float32) uint32 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint32(v * 255)
	}
}

// taParseFloatColour packs four 0..1 float colour channels into the
// 0xAARRGGBB word the ISP buffer stores vertex colours as.
func taParseFloatColour(a, r, g, b float32) uint32 {
	return clampUnit32(a)<<24 | clampUnit32(r)<<16 | clampUnit32(g)<<8 | clampUnit32(b)
}

// taParseIntensityColour scales base's RGB channels (and keeps its alpha)
// by a per-vertex intensity multiplier, per the intensity colour format's
// "face colour times per-vertex intensity" contract.
func taParseIntensityColour(base uint32, intensity float32) uint32 {
	scale := func(c uint32) uint32 {
		v := float32(c) * intensity
		switch {
		case v <= 0:
			return 0
		case v >= 255:
			return 255
		default:
			return uint32(v)
		}
	}
	a := base >> 24
	r := scale((base >> 16) & 0xFF)
	g := scale((base >> 8) & 0xFF)
	b := scale(base & 0xFF)
	return a<<24 | r<<16 | g<<8 | b
}

// Processing states, in the order blocks are expected to arrive.
const (
	taIdle = iota
	taInList
	taInPolygon
	taExpectPolyBlock2
	taExpectVertexBlock2
	taExpectEndVertexBlock2
	taError
)

// List types, as encoded in a polygon/sprite context's word[0] bits[27:24].
const (
	taListNone        = -1
	taListOpaque      = 0
	taListOpaqueMod   = 1
	taListTrans       = 2
	taListTransMod    = 3
	taListPunchThrough = 4
)

const (
	taGrowUp   = 0
	taGrowDown = 1
)

// Vertex type encoding. These bit values are the compact tag this parser
// switches on for the rest of a polygon's vertex blocks; they fold
// together the colour-format, textured/specular/uv16 and modifier-volume
// bits from the originating polygon or sprite context block.
const (
	taVertexNone                 = -1
	taVertexPacked                = 0x00
	taVertexTexPacked             = 0x08
	taVertexTexSpecPacked         = 0x0C
	taVertexTexUV16Packed         = 0x09
	taVertexTexUV16SpecPacked     = 0x0D
	taVertexFloat                 = 0x10
	taVertexTexFloat               = 0x18
	taVertexTexSpecFloat           = 0x1C
	taVertexTexUV16Float           = 0x19
	taVertexTexUV16SpecFloat       = 0x1D
	taVertexIntensity              = 0x20
	taVertexTexIntensity           = 0x28
	taVertexTexSpecIntensity       = 0x2C
	taVertexTexUV16Intensity       = 0x29
	taVertexTexUV16SpecIntensity   = 0x2D
	taVertexPackedMod              = 0x40
	taVertexTexPackedMod           = 0x48
	taVertexTexSpecPackedMod       = 0x4C
	taVertexTexUV16PackedMod       = 0x49
	taVertexTexUV16SpecPackedMod   = 0x4D
	taVertexIntensityMod           = 0x60
	taVertexTexIntensityMod        = 0x68
	taVertexTexSpecIntensityMod    = 0x6C
	taVertexTexUV16IntensityMod    = 0x69
	taVertexTexUV16SpecIntensityMod = 0x6D
	taVertexSprite                 = 0x80
	taVertexTexSprite              = 0x88
	taVertexModVolume               = 0x81
	taVertexListless                = 0xFF
)

const (
	taColourARGB32  = 0x00
	taColourFloat   = 0x10
	taColourIntensity = 0x20
	taColourLastInt = 0x30
)

const (
	taCmdModified = 0x80
	taCmdFullmod  = 0x40
	taCmdTextured = 0x08
	taCmdSpecular = 0x04
	taCmdShaded   = 0x02
	taCmdUV16     = 0x01
)

var taStripLengths = [4]int{3, 4, 6, 8}
var taTileMatrixSizes = [4]uint32{0, 8, 16, 32}

// Register addresses, as exposed in the PVR display-list/ISP window
// (0x005F8000-0x005F9FFC, see §6).
const (
	TA_OL_BASE        = 0x005F8124
	TA_ISP_BASE       = 0x005F8128
	TA_OL_LIMIT       = 0x005F812C
	TA_ISP_LIMIT      = 0x005F8130
	TA_GLOB_TILE_CLIP = 0x005F8138
	TA_ALLOC_CTRL     = 0x005F813C
	TA_LIST_INIT      = 0x005F8144
	TA_LIST_CONT      = 0x005F8160
	TA_NEXT_OPB_INIT  = 0x005F8164
)

type tileBounds struct {
	x1, y1, x2, y2 int32
}

type taVertex struct {
	x, y, z float32
	detail  [8]uint32
}

// taRegisters holds the register shadows §3 lists for the TA.
type taRegisters struct {
	globTileClip uint32
	allocCtrl    uint32
	olBase       uint32
	olLimit      uint32
	ispBase      uint32
	ispLimit     uint32
	ispCurrent   uint32
	nextOPB      uint32
	nextOPBInit  uint32
}

// hollyInterrupts is the subset of SystemBusRegs the TA needs: posting
// ASIC normal (list-end) and error (resource exhaustion, bad parameter)
// events. Declared here rather than imported so this file does not need
// to know SystemBusRegs's full shape.
type hollyInterrupts interface {
	RaiseNormal(bit int)
	RaiseError(bit int)
}

// PowerVR2TA is the tile-list command processor: no thread of control of
// its own, driven one 32-byte block at a time from memory_bus.go's TA
// FIFO device.
type PowerVR2TA struct {
	vram *VRAM
	asic hollyInterrupts

	regs taRegisters

	state              int
	width, height      int32
	tilelistDir        int32
	tilelistStart      uint32
	polybufStart       uint32
	currentVertexType  int32
	acceptVertexes     bool
	vertexCount        int
	maxVertex          int
	currentListType    int32
	currentTileMatrix  uint32
	currentTileSize    uint32
	intensity1, intensity2 uint32
	clip               tileBounds
	clipMode           int32
	polyContextSize    int
	polyVertexSize     int
	polyParity         int
	polyContext        [5]uint32
	polyPointer        uint32
	lastTriangleBounds tileBounds
	polyVertex         [8]taVertex
	modifierLastVolume bool
	modifierBounds     tileBounds
}

func NewPowerVR2TA(vram *VRAM) *PowerVR2TA {
	ta := &PowerVR2TA{vram: vram}
	ta.Reset()
	return ta
}

// AttachASIC wires the Holly interrupt aggregator after construction,
// breaking the construction cycle between SystemBusRegs (which holds a
// *PowerVR2TA) and the TA (which needs to post events back to it).
func (ta *PowerVR2TA) AttachASIC(asic hollyInterrupts) { ta.asic = asic }

// Reset matches §9's "TA error states are sticky" contract at the parser
// level too: construction starts the TA in Error until an explicit list
// init (a TA_LIST_INIT register write) brings it to Idle.
func (ta *PowerVR2TA) Reset() {
	ta.state = taError
}

// ReadRegister/WriteRegister implement the TA's slice of the PVR
// display-list register window; memory_bus.go falls back to a plain
// data-only array for any offset this parser doesn't own.
func (ta *PowerVR2TA) ReadRegister(addr uint32) (uint32, bool) {
	switch addr {
	case TA_OL_BASE:
		return ta.regs.olBase, true
	case TA_ISP_BASE:
		return ta.regs.ispBase, true
	case TA_OL_LIMIT:
		return ta.regs.olLimit, true
	case TA_ISP_LIMIT:
		return ta.regs.ispLimit, true
	case TA_GLOB_TILE_CLIP:
		return ta.regs.globTileClip, true
	case TA_ALLOC_CTRL:
		return ta.regs.allocCtrl, true
	case TA_NEXT_OPB_INIT:
		return ta.regs.nextOPBInit, true
	}
	return 0, false
}

func (ta *PowerVR2TA) WriteRegister(addr uint32, v uint32) bool {
	switch addr {
	case TA_OL_BASE:
		ta.regs.olBase = v
	case TA_ISP_BASE:
		ta.regs.ispBase = v
	case TA_OL_LIMIT:
		ta.regs.olLimit = v
	case TA_ISP_LIMIT:
		ta.regs.ispLimit = v
	case TA_GLOB_TILE_CLIP:
		ta.regs.globTileClip = v
	case TA_ALLOC_CTRL:
		ta.regs.allocCtrl = v
	case TA_NEXT_OPB_INIT:
		ta.regs.nextOPBInit = v
	case TA_LIST_INIT, TA_LIST_CONT:
		ta.initFromRegisters()
	default:
		return false
	}
	return true
}

// initFromRegisters brings the TA to Idle using the register shadows
// currently staged, clearing per-list accumulator state. Real hardware
// calls this the moment software writes a nonzero value to TA_LIST_INIT.
func (ta *PowerVR2TA) initFromRegisters() {
	ta.state = taIdle
	ta.currentListType = taListNone
	ta.currentVertexType = taVertexListless
	ta.polyParity = 0
	ta.vertexCount = 0
	ta.maxVertex = 3
	ta.polyVertexSize = 0
	ta.polyContext = [5]uint32{}
	ta.polyPointer = 0
	ta.acceptVertexes = true
	ta.lastTriangleBounds = tileBounds{x1: -1}
	ta.modifierLastVolume = false
	ta.modifierBounds = tileBounds{x1: 1 << 30, y1: 1 << 30, x2: -(1 << 30), y2: -(1 << 30)}

	size := ta.regs.globTileClip
	ta.width = int32(size&0xFFFF) + 1
	ta.height = int32((size>>16)&0xFFFF) + 1
	ta.clip = tileBounds{x1: 0, y1: 0, x2: ta.width - 1, y2: ta.height - 1}
	ta.clipMode = 0

	ta.tilelistDir = int32((ta.regs.allocCtrl >> 20) & 1)
	ta.regs.ispCurrent = ta.regs.ispBase
	ta.regs.nextOPB = ta.regs.nextOPBInit >> 2
	ta.tilelistStart = ta.regs.nextOPB
	ta.polybufStart = ta.regs.ispBase & 0x00F00000
}

func (ta *PowerVR2TA) badInputError() {
	ta.raiseError(HollyIllegalParamBit)
	fmt.Println("TA error: ILLEGAL_PARAM")
}

func (ta *PowerVR2TA) raiseError(bit int) {
	if ta.asic != nil {
		ta.asic.RaiseError(bit)
	}
}

func (ta *PowerVR2TA) raiseNormal(bit int) {
	if ta.asic != nil {
		ta.asic.RaiseNormal(bit)
	}
}

func taRaiseListBit(listType int32) int {
	switch listType {
	case taListOpaque:
		return HollyOpaqueBit
	case taListOpaqueMod:
		return HollyOpaqueModBit
	case taListTrans:
		return HollyTransBit
	case taListTransMod:
		return HollyTransModBit
	case taListPunchThrough:
		return HollyPunchThruBit
	}
	return -1
}

func (ta *PowerVR2TA) initList(listType int) {
	config := ta.regs.allocCtrl
	tileMatrix := ta.regs.olBase
	listEnd := ta.regs.olLimit
	ta.currentTileMatrix = tileMatrix

	dirOK := (ta.tilelistDir == taGrowDown && listEnd <= tileMatrix) ||
		(ta.tilelistDir == taGrowUp && listEnd >= tileMatrix)

	if dirOK && int32(listType) <= taListPunchThrough {
		for i := 0; i < listType; i++ {
			size := taTileMatrixSizes[config&3] << 2
			ta.currentTileMatrix += uint32(ta.width*ta.height) * size
			config >>= 4
		}
		ta.currentTileSize = taTileMatrixSizes[config&3]
		if ta.currentTileSize != 0 {
			p := ta.currentTileMatrix
			total := uint32(ta.width * ta.height)
			for i := uint32(0); i < total; i++ {
				ta.vram.Write32(p, 0xF0000000)
				p += ta.currentTileSize * 4
			}
		}
	} else {
		ta.currentTileSize = 0
	}

	if tileMatrix == listEnd {
		ta.currentTileSize = 0
	}

	ta.state = taInList
	ta.currentListType = int32(listType)
	ta.lastTriangleBounds.x1 = -1
}

func (ta *PowerVR2TA) endList() {
	if ta.currentListType != taListNone {
		if bit := taRaiseListBit(ta.currentListType); bit >= 0 {
			ta.raiseNormal(bit)
		}
	}
	ta.currentListType = taListNone
	ta.currentVertexType = taVertexListless
	ta.polyVertexSize = 0
	ta.polyContext[1] = 0
	ta.state = taIdle
}

// writePolygonBuffer appends words to the linear ISP parameter buffer,
// raising PRIM_NOMEM and stopping short if ISP_LIMIT is hit.
func (ta *PowerVR2TA) writePolygonBuffer(words []uint32) int {
	pos := ta.regs.ispCurrent
	end := ta.regs.ispLimit
	written := 0
	for _, w := range words {
		if pos == end {
			ta.raiseError(HollyPrimNoMemBit)
			fmt.Println("TA error: PRIM_NOMEM")
			break
		}
		ta.vram.Write32(pos, w)
		pos += 4
		written++
	}
	ta.regs.ispCurrent = pos
	return written
}

// allocTilelist hands out a fresh OPB from NEXT_OPB, growing toward
// OL_LIMIT in the direction ALLOC_CTRL selects, and threads `reference`
// (the VRAM word that should point at the new block) to it.
func (ta *PowerVR2TA) allocTilelist(reference uint32) (uint32, bool) {
	if ta.currentTileSize == 0 {
		return 0, false
	}

	pos := ta.regs.nextOPB
	limit := ta.regs.olLimit >> 2

	if ta.tilelistDir == taGrowDown {
		pos -= ta.currentTileSize
		newPos := pos
		switch {
		case pos == limit:
			ta.vram.Write32(pos<<2, 0xF0000000)
			ta.vram.Write32(reference, 0xE0000000|(pos<<2))
			return 0, false
		case pos < limit:
			ta.vram.Write32(reference, 0xE0000000|(pos<<2))
			return 0, false
		case newPos <= limit:
		case newPos <= limit+ta.currentTileSize:
			ta.raiseError(HollyMatrNoMemBit)
			fmt.Println("TA error: MATR_NOMEM")
			ta.regs.nextOPB = newPos
		default:
			ta.regs.nextOPB = newPos
		}
		ta.vram.Write32(reference, 0xE0000000|(pos<<2))
		return pos << 2, true
	}

	newPos := pos + ta.currentTileSize
	switch {
	case pos == limit:
		ta.vram.Write32(pos<<2, 0xF0000000)
		ta.vram.Write32(reference, 0xE0000000|(pos<<2))
		return 0, false
	case pos > limit:
		ta.vram.Write32(reference, 0xE0000000|(pos<<2))
		return 0, false
	case newPos >= limit:
	case newPos >= limit-ta.currentTileSize:
		ta.raiseError(HollyMatrNoMemBit)
		fmt.Println("TA error: MATR_NOMEM")
		ta.regs.nextOPB = newPos
	default:
		ta.regs.nextOPB = newPos
	}
	ta.vram.Write32(reference, 0xE0000000|(pos<<2))
	return pos << 2, true
}

// writeTileEntry threads tileEntry onto tile (x,y)'s OPB, compacting runs
// of same-shaped triangles against lastTriangleBounds and following
// 0xE0000000-tagged continuation pointers across OPBs.
func (ta *PowerVR2TA) writeTileEntry(x, y int32, tileEntry uint32) {
	if ta.clipMode == 3 && x >= ta.clip.x1 && x <= ta.clip.x2 && y >= ta.clip.y1 && y <= ta.clip.y2 {
		return
	}

	tileOffset := uint32(y*ta.width + x)
	tile := ta.currentTileMatrix + (ta.currentTileSize*tileOffset)<<2
	tileStart := tile

	var lastTri uint32
	if tileEntry&0x80000000 != 0 && ta.lastTriangleBounds.x1 != -1 &&
		ta.lastTriangleBounds.x1 <= x && ta.lastTriangleBounds.x2 >= x &&
		ta.lastTriangleBounds.y1 <= y && ta.lastTriangleBounds.y2 >= y {
		lastTri = tileEntry & 0xE1E00000
	}

	if ta.vram.Read32(tile) == 0xF0000000 {
		ta.vram.Write32(tile, tileEntry)
		ta.vram.Write32(tile+4, 0xF0000000)
		return
	}

	for {
		value := ta.vram.Read32(tile)
		for i := uint32(1); i < ta.currentTileSize; i++ {
			tile += 4
			next := ta.vram.Read32(tile)
			if next == 0xF0000000 {
				if lastTri != 0 && lastTri == value&0xE1E00000 {
					count := (value & 0x1E000000) + 0x02000000
					if count < 0x20000000 {
						ta.vram.Write32(tile-4, (value&0xE1FFFFFF)|count)
						return
					}
				}
				if i < ta.currentTileSize-1 {
					ta.vram.Write32(tile, tileEntry)
					ta.vram.Write32(tile+4, 0xF0000000)
					return
				}
			}
			value = next
		}

		switch {
		case value == 0xF0000000:
			if newTile, ok := ta.allocTilelist(tile); ok {
				ta.vram.Write32(newTile, tileEntry)
				ta.vram.Write32(newTile+4, 0xF0000000)
			}
			return
		case value&0xFF000000 == 0xE0000000:
			next := value & 0x00FFFFFF
			if next == tileStart {
				return
			}
			tileStart = next
			tile = next
		default:
			return
		}
	}
}

func taTileCoord(v float32) int32 {
	switch {
	case v < 0 || isNegInf32(v) || math.IsNaN(float64(v)):
		return -1
	case v > (1<<31-1) || isPosInf32(v):
		return (1<<31 - 1) / 32
	default:
		return int32(v / 32)
	}
}

func min2i32(a, b int32) int32 {
	if b < a {
		return b
	}
	return a
}

func max2i32(a, b int32) int32 {
	if b > a {
		return b
	}
	return a
}

func min3i32(a, b, c int32) int32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3i32(a, b, c int32) int32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func clampi32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// commitPolygon tiles the accumulated vertex buffer: tile-coordinate
// every vertex, union per-triangle bounding boxes, clip against the user
// rectangle in the active clip mode, append the polygon's words to the
// ISP buffer, then emit a tile entry per tile the bounding box touches.
func (ta *PowerVR2TA) commitPolygon() {
	n := ta.vertexCount
	if n < 3 {
		return
	}

	tx := make([]int32, n)
	ty := make([]int32, n)
	for i := 0; i < n; i++ {
		tx[i] = taTileCoord(ta.polyVertex[i].x)
		ty[i] = taTileCoord(ta.polyVertex[i].y)
	}

	triBounds := make([]tileBounds, n-2)
	triBounds[0] = tileBounds{min3i32(tx[0], tx[1], tx[2]), min3i32(ty[0], ty[1], ty[2]), max3i32(tx[0], tx[1], tx[2]), max3i32(ty[0], ty[1], ty[2])}
	poly := triBounds[0]
	for i := 1; i < n-2; i++ {
		triBounds[i] = tileBounds{min3i32(tx[i], tx[i+1], tx[i+2]), min3i32(ty[i], ty[i+1], ty[i+2]), max3i32(tx[i], tx[i+1], tx[i+2]), max3i32(ty[i], ty[i+1], ty[i+2])}
		poly.x1 = min2i32(poly.x1, triBounds[i].x1)
		poly.x2 = max2i32(poly.x2, triBounds[i].x2)
		poly.y1 = min2i32(poly.y1, triBounds[i].y1)
		poly.y2 = max2i32(poly.y2, triBounds[i].y2)
	}

	poly.x1 = clampi32(poly.x1, 0, ta.width-1)
	poly.x2 = clampi32(poly.x2, 0, ta.width-1)
	poly.y1 = clampi32(poly.y1, 0, ta.height-1)
	poly.y2 = clampi32(poly.y2, 0, ta.height-1)

	if ta.currentVertexType == taVertexModVolume {
		ta.modifierBounds.x1 = min2i32(ta.modifierBounds.x1, poly.x1)
		ta.modifierBounds.x2 = max2i32(ta.modifierBounds.x2, poly.x2)
		ta.modifierBounds.y1 = min2i32(ta.modifierBounds.y1, poly.y1)
		ta.modifierBounds.y2 = max2i32(ta.modifierBounds.y2, poly.y2)
		if ta.modifierLastVolume {
			poly = ta.modifierBounds
		}
	}

	switch ta.clipMode {
	case 0:
		if poly.x2 < 0 || poly.x1 >= ta.width || poly.y2 < 0 || poly.y1 >= ta.height {
			return
		}
	case 2:
		if poly.x2 < ta.clip.x1 || poly.x1 > ta.clip.x2 || poly.y2 < ta.clip.y1 || poly.y1 > ta.clip.y2 {
			return
		}
		poly.x1 = max2i32(poly.x1, ta.clip.x1)
		poly.x2 = min2i32(poly.x2, ta.clip.x2)
		poly.y1 = max2i32(poly.y1, ta.clip.y1)
		poly.y2 = min2i32(poly.y2, ta.clip.y2)
	case 3:
		if poly.x1 >= ta.clip.x1 && poly.x2 <= ta.clip.x2 && poly.y1 >= ta.clip.y1 && poly.y2 <= ta.clip.y2 {
			return
		}
	}

	tileEntry := ((ta.regs.ispCurrent - ta.polybufStart) >> 2) | ta.polyPointer

	if ta.writePolygonBuffer(ta.polyContext[:ta.polyContextSize]) < ta.polyContextSize {
		return
	}
	for i := 0; i < n; i++ {
		v := ta.polyVertex[i]
		words := make([]uint32, 0, 3+ta.polyVertexSize)
		words = append(words, floatBits(v.x), floatBits(v.y), floatBits(v.z))
		words = append(words, v.detail[:ta.polyVertexSize]...)
		if ta.writePolygonBuffer(words) < len(words) {
			return
		}
	}

	if ta.currentTileSize == 0 {
		return
	}

	switch {
	case n == 3:
		tileEntry |= 0x80000000
		for y := poly.y1; y <= poly.y2; y++ {
			for x := poly.x1; x <= poly.x2; x++ {
				ta.writeTileEntry(x, y, tileEntry)
			}
		}
		ta.lastTriangleBounds = poly
	case ta.currentVertexType == taVertexSprite || ta.currentVertexType == taVertexTexSprite:
		tileEntry |= 0xA0000000
		for y := poly.y1; y <= poly.y2; y++ {
			for x := poly.x1; x <= poly.x2; x++ {
				ta.writeTileEntry(x, y, tileEntry)
			}
		}
		ta.lastTriangleBounds = poly
	default:
		for y := poly.y1; y <= poly.y2; y++ {
			for x := poly.x1; x <= poly.x2; x++ {
				entry := tileEntry
				for i, b := range triBounds {
					if b.x1 <= x && b.x2 >= x && b.y1 <= y && b.y2 >= y {
						entry |= 0x40000000 >> uint(i)
					}
				}
				ta.writeTileEntry(x, y, entry)
			}
		}
		ta.lastTriangleBounds.x1 = -1
	}
}

func taIsNormalPoly(vtype int32) bool { return vtype < taVertexSprite }

func (ta *PowerVR2TA) splitPolygon() {
	ta.commitPolygon()
	if taIsNormalPoly(ta.currentVertexType) {
		switch {
		case ta.vertexCount == 3:
			if ta.polyParity == 0 {
				ta.polyVertex[0] = ta.polyVertex[2]
				ta.polyParity = 1
			} else {
				ta.polyVertex[1] = ta.polyVertex[2]
				ta.polyParity = 0
			}
		case ta.vertexCount >= 2:
			last := ta.vertexCount
			ta.polyVertex[0] = ta.polyVertex[last-2]
			ta.polyVertex[1] = ta.polyVertex[last-1]
			ta.polyParity = 0
		}
		ta.vertexCount = 2
	} else {
		ta.vertexCount = 0
	}
}

func taPolycmdListType(word0 uint32) int    { return int((word0 >> 24) & 0xF) }
func taPolycmdUseLength(word0 uint32) bool  { return word0&0x00800000 != 0 }
func taPolycmdLength(word0 uint32) int      { return taStripLengths[(word0>>18)&3] }
func taPolycmdClip(word0 uint32) uint32     { return (word0 >> 16) & 3 }
func taPolycmdColourFmt(word0 uint32) uint32 { return word0 & 0x30 }
func taPolycmdIsSpecular(word0 uint32) bool { return word0&0x0C == 0x0C }
func taPolycmdIsFullmod(word0 uint32) bool  { return word0&0xC0 == 0xC0 }
func taIsEndVertex(word0 uint32) bool       { return word0&0x10000000 != 0 }
func taIsModifierList(list int32) bool {
	return list == taListOpaqueMod || list == taListTransMod
}

func (ta *PowerVR2TA) parsePolygonContext(b [8]uint32) {
	word0 := b[0]
	colourFmt := taPolycmdColourFmt(word0)

	if taPolycmdUseLength(word0) {
		ta.maxVertex = taPolycmdLength(word0)
	}
	ta.clipMode = int32(taPolycmdClip(word0))
	if ta.clipMode == 1 {
		ta.clipMode = 2
	}
	ta.vertexCount = 0
	ta.polyContext[0] = (b[1] & 0xFC1FFFFF) | (word0&0x0B)<<22
	ta.polyContext[1] = b[2]
	ta.polyContext[3] = b[4]
	ta.polyParity = 0

	if word0&taCmdTextured != 0 {
		ta.currentVertexType = int32(word0 & 0x0D)
		ta.polyContext[2] = b[3]
		ta.polyContext[4] = b[5]
		if word0&taCmdSpecular != 0 {
			ta.polyContext[0] |= 0x01000000
			ta.polyVertexSize = 4
		} else {
			ta.polyVertexSize = 3
		}
		if word0&taCmdUV16 != 0 {
			ta.polyVertexSize--
		}
	} else {
		ta.currentVertexType = 0
		ta.polyVertexSize = 1
		ta.polyContext[2] = 0
		ta.polyContext[4] = 0
	}

	ta.polyPointer = uint32(ta.polyVertexSize) << 21
	ta.polyContextSize = 3

	if word0&taCmdModified != 0 {
		ta.polyPointer |= 0x01000000
		if word0&taCmdFullmod != 0 {
			ta.polyContextSize = 5
			ta.polyVertexSize <<= 1
			ta.currentVertexType |= 0x40
			if colourFmt == taColourFloat {
				colourFmt = taColourLastInt
			}
		}
	}

	switch colourFmt {
	case taColourIntensity:
		if taPolycmdIsFullmod(word0) || taPolycmdIsSpecular(word0) {
			ta.state = taExpectPolyBlock2
		} else {
			ta.intensity1 = taParseFloatColour(floatAt(b, 4), floatAt(b, 5), floatAt(b, 6), floatAt(b, 7))
		}
	case taColourLastInt:
		colourFmt = taColourIntensity
	}

	ta.currentVertexType |= int32(colourFmt)
}

func (ta *PowerVR2TA) parseModifierContext(b [8]uint32) {
	word0 := b[0]
	ta.currentVertexType = taVertexModVolume
	ta.polyVertexSize = 0
	ta.clipMode = int32(taPolycmdClip(word0))
	if ta.clipMode == 1 {
		ta.clipMode = 2
	}
	ta.polyContextSize = 3
	ta.polyContext[0] = (b[1] & 0xFC1FFFFF) | (word0&0x0B)<<22
	if taPolycmdIsSpecular(word0) {
		ta.polyContext[0] |= 0x01000000
	}
	ta.polyContext[1] = 0
	ta.polyContext[2] = 0
	ta.vertexCount = 0
	ta.maxVertex = 3
	ta.polyPointer = 0

	if ta.modifierLastVolume {
		ta.modifierBounds = tileBounds{x1: (1<<31 - 1) / 32, y1: (1<<31 - 1) / 32, x2: -1, y2: -1}
	}
	ta.modifierLastVolume = word0&taCmdFullmod != 0
}

func (ta *PowerVR2TA) parseSpriteContext(b [8]uint32) {
	word0 := b[0]
	ta.polyContextSize = 3
	ta.polyContext[0] = (b[1] & 0xFC1FFFFF) | (word0&0x0B)<<22 | 0x00400000
	ta.clipMode = int32(taPolycmdClip(word0))
	if ta.clipMode == 1 {
		ta.clipMode = 2
	}
	if taPolycmdIsSpecular(word0) {
		ta.polyContext[0] |= 0x01000000
	}
	ta.polyContext[1] = b[2]
	ta.polyContext[2] = b[3]
	if word0&taCmdTextured != 0 {
		ta.polyVertexSize = 2
		ta.polyVertex[2].detail[1] = b[4]
		ta.currentVertexType = taVertexTexSprite
	} else {
		ta.polyVertexSize = 1
		ta.polyVertex[2].detail[0] = b[4]
		ta.currentVertexType = taVertexSprite
	}
	ta.vertexCount = 0
	ta.maxVertex = 4
	ta.polyPointer = uint32(ta.polyVertexSize) << 21
}

func (ta *PowerVR2TA) fillVertexes() {
	if ta.vertexCount == 0 {
		return
	}
	last := ta.polyVertex[ta.vertexCount-1]
	for i := ta.vertexCount; i < ta.maxVertex; i++ {
		ta.polyVertex[i] = last
	}
}

func floatAt(b [8]uint32, i int) float32 { return floatFromBits(b[i]) }

// parseVertex absorbs one vertex block. It switches on the vertex-format
// tag the preceding context block set, with one case per tag, and copies
// the detail words that tag's layout carries; formats that span two
// blocks move the parser to a continuation state.
func (ta *PowerVR2TA) parseVertex(b [8]uint32) {
	if ta.vertexCount >= len(ta.polyVertex) {
		return
	}
	idx := ta.vertexCount
	v := &ta.polyVertex[idx]
	v.x, v.y, v.z = floatAt(b, 1), floatAt(b, 2), floatAt(b, 3)

	switch ta.currentVertexType {
	case taVertexPacked:
		v.detail[0] = b[6]
	case taVertexFloat:
		v.detail[0] = taParseFloatColour(floatAt(b, 4), floatAt(b, 5), floatAt(b, 6), floatAt(b, 7))
	case taVertexIntensity:
		v.detail[0] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))

	case taVertexTexSpecPacked:
		v.detail[3] = b[7]
		v.detail[0], v.detail[1], v.detail[2] = b[4], b[5], b[6]
	case taVertexTexPacked:
		v.detail[0], v.detail[1], v.detail[2] = b[4], b[5], b[6]
	case taVertexTexUV16SpecPacked:
		v.detail[2] = b[7]
		v.detail[0], v.detail[1] = b[4], b[6]
	case taVertexTexUV16Packed:
		v.detail[0], v.detail[1] = b[4], b[6]

	case taVertexTexFloat, taVertexTexSpecFloat:
		v.detail[0], v.detail[1] = b[4], b[5]
		ta.state = taExpectVertexBlock2
	case taVertexTexUV16Float, taVertexTexUV16SpecFloat:
		v.detail[0] = b[4]
		ta.state = taExpectVertexBlock2

	case taVertexTexSpecIntensity:
		v.detail[3] = taParseIntensityColour(ta.intensity2, floatAt(b, 7))
		v.detail[0], v.detail[1] = b[4], b[5]
		v.detail[2] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
	case taVertexTexIntensity:
		v.detail[0], v.detail[1] = b[4], b[5]
		v.detail[2] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
	case taVertexTexUV16SpecIntensity:
		v.detail[2] = taParseIntensityColour(ta.intensity2, floatAt(b, 7))
		v.detail[0] = b[4]
		v.detail[1] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
	case taVertexTexUV16Intensity:
		v.detail[0] = b[4]
		v.detail[1] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))

	case taVertexPackedMod:
		v.detail[0], v.detail[1] = b[4], b[5]
	case taVertexIntensityMod:
		v.detail[0] = taParseIntensityColour(ta.intensity1, floatAt(b, 4))
		v.detail[1] = taParseIntensityColour(ta.intensity2, floatAt(b, 5))

	case taVertexTexSpecPackedMod:
		v.detail[3] = b[7]
		v.detail[0], v.detail[1], v.detail[2] = b[4], b[5], b[6]
		ta.state = taExpectVertexBlock2
	case taVertexTexPackedMod:
		v.detail[0], v.detail[1], v.detail[2] = b[4], b[5], b[6]
		ta.state = taExpectVertexBlock2
	case taVertexTexUV16SpecPackedMod:
		v.detail[2] = b[7]
		v.detail[0], v.detail[1] = b[4], b[6]
		ta.state = taExpectVertexBlock2
	case taVertexTexUV16PackedMod:
		v.detail[0], v.detail[1] = b[4], b[6]
		ta.state = taExpectVertexBlock2

	case taVertexTexSpecIntensityMod:
		v.detail[3] = taParseIntensityColour(ta.intensity1, floatAt(b, 7))
		v.detail[0], v.detail[1] = b[4], b[5]
		v.detail[2] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
		ta.state = taExpectVertexBlock2
	case taVertexTexIntensityMod:
		v.detail[0], v.detail[1] = b[4], b[5]
		v.detail[2] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
		ta.state = taExpectVertexBlock2
	case taVertexTexUV16SpecIntensityMod:
		v.detail[2] = taParseIntensityColour(ta.intensity1, floatAt(b, 7))
		v.detail[0] = b[4]
		v.detail[1] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
		ta.state = taExpectVertexBlock2
	case taVertexTexUV16IntensityMod:
		v.detail[0] = b[4]
		v.detail[1] = taParseIntensityColour(ta.intensity1, floatAt(b, 6))
		ta.state = taExpectVertexBlock2

	case taVertexSprite, taVertexTexSprite, taVertexModVolume, taVertexListless:
		if idx+2 < len(ta.polyVertex) {
			ta.polyVertex[idx+1].x, ta.polyVertex[idx+1].y, ta.polyVertex[idx+1].z = floatAt(b, 4), floatAt(b, 5), floatAt(b, 6)
			ta.polyVertex[idx+2].x = floatAt(b, 7)
			ta.vertexCount += 2
			if ta.currentVertexType == taVertexSprite || ta.currentVertexType == taVertexTexSprite {
				ta.state = taExpectEndVertexBlock2
			} else {
				ta.state = taExpectVertexBlock2
			}
		}
	}

	ta.vertexCount++
}

// parseVertexBlock2 absorbs the continuation block for vertex formats
// that span two 32-byte blocks (textured float colours, modifier-volume
// second halves, sprite third vertex + UV words).
func (ta *PowerVR2TA) parseVertexBlock2(b [8]uint32) {
	if ta.vertexCount == 0 {
		return
	}
	idx := ta.vertexCount - 1
	v := &ta.polyVertex[idx]

	switch ta.currentVertexType {
	case taVertexTexSpecFloat:
		v.detail[3] = taParseFloatColour(floatAt(b, 4), floatAt(b, 5), floatAt(b, 6), floatAt(b, 7))
		v.detail[2] = taParseFloatColour(floatAt(b, 0), floatAt(b, 1), floatAt(b, 2), floatAt(b, 3))
	case taVertexTexFloat:
		v.detail[2] = taParseFloatColour(floatAt(b, 0), floatAt(b, 1), floatAt(b, 2), floatAt(b, 3))
	case taVertexTexUV16SpecFloat:
		v.detail[2] = taParseFloatColour(floatAt(b, 4), floatAt(b, 5), floatAt(b, 6), floatAt(b, 7))
		v.detail[1] = taParseFloatColour(floatAt(b, 0), floatAt(b, 1), floatAt(b, 2), floatAt(b, 3))
	case taVertexTexUV16Float:
		v.detail[1] = taParseFloatColour(floatAt(b, 0), floatAt(b, 1), floatAt(b, 2), floatAt(b, 3))

	case taVertexTexPackedMod:
		v.detail[3], v.detail[4], v.detail[5] = b[0], b[1], b[2]
	case taVertexTexSpecPackedMod:
		v.detail[4], v.detail[5], v.detail[6], v.detail[7] = b[0], b[1], b[2], b[3]
	case taVertexTexUV16PackedMod:
		v.detail[2], v.detail[3] = b[0], b[2]
	case taVertexTexUV16SpecPackedMod:
		v.detail[3], v.detail[4], v.detail[5] = b[0], b[2], b[3]

	case taVertexTexIntensityMod:
		v.detail[3], v.detail[4] = b[0], b[1]
		v.detail[5] = taParseIntensityColour(ta.intensity2, floatAt(b, 2))
	case taVertexTexSpecIntensityMod:
		v.detail[4], v.detail[5] = b[0], b[1]
		v.detail[6] = taParseIntensityColour(ta.intensity2, floatAt(b, 2))
		v.detail[7] = taParseIntensityColour(ta.intensity2, floatAt(b, 3))
	case taVertexTexUV16IntensityMod:
		v.detail[2] = b[0]
		v.detail[3] = taParseIntensityColour(ta.intensity2, floatAt(b, 2))
	case taVertexTexUV16SpecIntensityMod:
		v.detail[3] = b[0]
		v.detail[4] = taParseIntensityColour(ta.intensity2, floatAt(b, 2))
		v.detail[5] = taParseIntensityColour(ta.intensity2, floatAt(b, 3))

	case taVertexSprite:
		v.y, v.z = floatAt(b, 0), floatAt(b, 1)
		if ta.vertexCount < len(ta.polyVertex) {
			nextIdx := ta.vertexCount
			ta.polyVertex[nextIdx] = taVertex{x: floatAt(b, 2), y: floatAt(b, 3)}
			ta.polyVertex[0].detail[0] = 0
			if ta.maxVertex > 1 {
				ta.polyVertex[1].detail[0] = 0
			}
			ta.vertexCount++
		}
	case taVertexTexSprite:
		v.y, v.z = floatAt(b, 0), floatAt(b, 1)
		if ta.vertexCount < len(ta.polyVertex) {
			nextIdx := ta.vertexCount
			ta.polyVertex[nextIdx] = taVertex{x: floatAt(b, 2), y: floatAt(b, 3)}
			ta.polyVertex[0].detail[0] = b[5]
			if ta.maxVertex > 1 {
				ta.polyVertex[1].detail[0] = b[6]
			}
			ta.polyVertex[2].detail[0] = b[7]
			ta.vertexCount++
		}
	case taVertexModVolume, taVertexListless:
		v.y, v.z = floatAt(b, 0), floatAt(b, 1)
	}

	ta.state = taInPolygon
}

// ProcessBlock is the TA's only entry point: one 8-word, 32-byte command
// block per call, synchronously from the SH-4 write path.
func (ta *PowerVR2TA) ProcessBlock(block [8]uint32) {
	switch ta.state {
	case taError:
		return
	case taExpectPolyBlock2:
		ta.intensity1 = taParseFloatColour(floatAt(block, 0), floatAt(block, 1), floatAt(block, 2), floatAt(block, 3))
		ta.intensity2 = taParseFloatColour(floatAt(block, 4), floatAt(block, 5), floatAt(block, 6), floatAt(block, 7))
		ta.state = taInList
		return
	case taExpectVertexBlock2:
		ta.parseVertexBlock2(block)
		if ta.vertexCount == ta.maxVertex {
			ta.splitPolygon()
		}
		return
	case taExpectEndVertexBlock2:
		ta.parseVertexBlock2(block)
		if ta.vertexCount < 3 {
			ta.badInputError()
		} else {
			ta.commitPolygon()
		}
		ta.vertexCount = 0
		ta.polyParity = 0
		ta.state = taInList
		return
	}

	switch block[0] >> 29 {
	case 0:
		if ta.state == taInPolygon {
			ta.badInputError()
			ta.endList()
			ta.state = taError
		} else {
			ta.endList()
		}
	case 1:
		if ta.state == taInPolygon {
			ta.badInputError()
			ta.acceptVertexes = false
		}
		ta.clip.x1 = int32(block[4] & 0x3F)
		ta.clip.y1 = int32(block[5] & 0x0F)
		ta.clip.x2 = int32(block[6] & 0x3F)
		ta.clip.y2 = int32(block[7] & 0x0F)
		if ta.clip.x2 >= ta.width {
			ta.clip.x2 = ta.width - 1
		}
		if ta.clip.y2 >= ta.height {
			ta.clip.y2 = ta.height - 1
		}
	case 4:
		if ta.state == taIdle {
			ta.initList(taPolycmdListType(block[0]))
		}
		if ta.currentListType == taListNone {
			fmt.Printf("TA error: polygon context in listless mode (state=%d)\n", ta.state)
		}
		if ta.vertexCount != 0 {
			ta.badInputError()
			ta.acceptVertexes = false
		} else if taIsModifierList(ta.currentListType) {
			ta.parseModifierContext(block)
		} else {
			ta.parsePolygonContext(block)
		}
	case 5:
		if ta.state == taIdle {
			ta.initList(taPolycmdListType(block[0]))
		}
		if ta.currentListType == taListNone {
			fmt.Println("TA error: sprite context in listless mode")
		}
		if ta.vertexCount != 0 {
			ta.fillVertexes()
			ta.commitPolygon()
		}
		ta.parseSpriteContext(block)
	case 7:
		if ta.currentListType == taListNone {
			fmt.Printf("TA error: vertex in listless mode (state=%d)\n", ta.state)
			ta.badInputError()
			return
		}
		ta.state = taInPolygon
		ta.parseVertex(block)

		switch ta.state {
		case taExpectEndVertexBlock2:
		case taExpectVertexBlock2:
			if taIsEndVertex(block[0]) {
				ta.state = taExpectEndVertexBlock2
			}
		default:
			if taIsEndVertex(block[0]) {
				if ta.vertexCount < 3 {
					ta.badInputError()
				} else {
					ta.commitPolygon()
				}
				ta.vertexCount = 0
				ta.polyParity = 0
				ta.state = taInList
			} else if ta.vertexCount == ta.maxVertex {
				ta.splitPolygon()
			}
		}
	default:
		if ta.state == taInPolygon {
			ta.badInputError()
		}
	}
}
