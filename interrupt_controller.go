// interrupt_controller.go - SH-4 on-chip interrupt controller (INTC)

/*
interrupt_controller.go - SH-4 INTC

The INTC aggregates pending/enabled interrupt sources and hands the highest
priority eligible one to the CPU step loop once per retired instruction. It
mirrors the style of the teacher's register-table components: a small fixed
array of source descriptors, a pending/enabled bitmap, and a re-sort trigger
whenever a priority register is written (IPRA/B/C, or the synthetic IRL
register that carries the three external interrupt request levels).
*/

package main

import "sort"

// Interrupt source indices. intEventCodes maps each one to the INTEVT
// value that interrupt entry writes unchanged.
const (
	IntIRL0 = iota
	IntIRL1
	IntIRL2
	IntIRL3
	IntTMU0TUNI0
	IntTMU1TUNI1
	IntTMU2TUNI2
	IntTMU2TICPI2
	IntRTCATI
	IntRTCPRI
	IntRTCCUI
	IntSCIERI
	IntSCIRXI
	IntSCITXI
	IntSCITEI
	IntWDTITI
	IntREFRCMI
	IntGPIOGPIOI
	IntDMACDMTE0
	IntDMACDMTE1
	IntDMACDMTE2
	IntDMACDMTE3
	IntDMACDMAE
	IntSCIF_ERI
	IntSCIF_RXI
	IntSCIF_BRI
	IntSCIF_TXI
	IntHUDIHUDI
	numIntSources
)

// event codes, per the SH-4 hardware manual's INTEVT table.
var intEventCodes = [numIntSources]uint16{
	IntIRL0: 0x200, IntIRL1: 0x300, IntIRL2: 0x400, IntIRL3: 0x600,
	IntTMU0TUNI0: 0x400, IntTMU1TUNI1: 0x420, IntTMU2TUNI2: 0x440, IntTMU2TICPI2: 0x460,
	IntRTCATI: 0x480, IntRTCPRI: 0x4A0, IntRTCCUI: 0x4C0,
	IntSCIERI: 0x4E0, IntSCIRXI: 0x500, IntSCITXI: 0x520, IntSCITEI: 0x540,
	IntWDTITI: 0x560, IntREFRCMI: 0x580, IntGPIOGPIOI: 0x5A0,
	IntDMACDMTE0: 0x640, IntDMACDMTE1: 0x660, IntDMACDMTE2: 0x680, IntDMACDMTE3: 0x6A0, IntDMACDMAE: 0x6C0,
	IntSCIF_ERI: 0x700, IntSCIF_RXI: 0x720, IntSCIF_BRI: 0x740, IntSCIF_TXI: 0x760,
	IntHUDIHUDI: 0x600,
}

// priorityRegIdx/priorityNibble locate the 4-bit priority field for a
// source: regIdx 0..2 select IPRA/IPRB/IPRC, regIdx 3 selects the synthetic
// IRL register. nibble n selects bits 4n+3:4n (3 = bits 15:12, highest).
type prioRef struct {
	regIdx int
	nibble int
}

// Nibble assignments follow the SH7091 manual's IPR layout: IPRA carries
// TMU0/TMU1/TMU2/RTC (high nibble first), IPRB carries WDT/REF/SCI, IPRC
// carries GPIO/DMAC/SCIF/HUDI.
var intPriorityRef = [numIntSources]prioRef{
	IntIRL0: {3, 3}, IntIRL1: {3, 2}, IntIRL2: {3, 1}, IntIRL3: {3, 0},
	IntTMU0TUNI0: {0, 3}, IntTMU1TUNI1: {0, 2}, IntTMU2TUNI2: {0, 1}, IntTMU2TICPI2: {0, 1},
	IntRTCATI: {0, 0}, IntRTCPRI: {0, 0}, IntRTCCUI: {0, 0},
	IntWDTITI: {1, 3}, IntREFRCMI: {1, 2},
	IntSCIERI: {1, 1}, IntSCIRXI: {1, 1}, IntSCITXI: {1, 1}, IntSCITEI: {1, 1},
	IntGPIOGPIOI: {2, 3},
	IntDMACDMTE0: {2, 2}, IntDMACDMTE1: {2, 2}, IntDMACDMTE2: {2, 2}, IntDMACDMTE3: {2, 2}, IntDMACDMAE: {2, 2},
	IntSCIF_ERI: {2, 1}, IntSCIF_RXI: {2, 1}, IntSCIF_BRI: {2, 1}, IntSCIF_TXI: {2, 1},
	IntHUDIHUDI: {2, 0},
}

type InterruptController struct {
	pending uint32
	enabled uint32

	// index 0=IPRA 1=IPRB 2=IPRC 3=IRL (synthetic)
	iprs [4]uint16

	// order holds source indices sorted by descending effective priority;
	// re-sorted whenever a priority register is written.
	order [numIntSources]int
}

func NewInterruptController() *InterruptController {
	ic := &InterruptController{}
	ic.Reset()
	return ic
}

func (ic *InterruptController) Reset() {
	ic.pending = 0
	// All sources start enabled: the real gate for an on-chip source is
	// its IPR nibble, since priority 0 can never exceed IMASK. Disable
	// exists for callers that mask a source outright.
	ic.enabled = 1<<numIntSources - 1
	ic.iprs = [4]uint16{}
	// The external IRL lines have fixed priorities on the Dreamcast (the
	// Holly ASIC wires its three request levels straight to them); seed
	// the synthetic IRL register accordingly rather than leaving them
	// masked at 0. IPRA/B/C start at 0 per the hardware manual.
	ic.iprs[3] = 0xDB90
	for i := range ic.order {
		ic.order[i] = i
	}
	ic.resort()
}

func (ic *InterruptController) priority(src int) int {
	ref := intPriorityRef[src]
	shift := uint(ref.nibble * 4)
	return int((ic.iprs[ref.regIdx] >> shift) & 0xF)
}

// resort re-establishes ic.order in descending priority order. Called after
// any write that may have changed a priority register; ties keep their
// prior relative order (stable sort), matching real hardware's fixed
// sub-priority among same-level sources.
func (ic *InterruptController) resort() {
	sort.SliceStable(ic.order[:], func(i, j int) bool {
		return ic.priority(ic.order[i]) > ic.priority(ic.order[j])
	})
}

func (ic *InterruptController) WriteIPRA(v uint16) { ic.iprs[0] = v; ic.resort() }
func (ic *InterruptController) WriteIPRB(v uint16) { ic.iprs[1] = v; ic.resort() }
func (ic *InterruptController) WriteIPRC(v uint16) { ic.iprs[2] = v; ic.resort() }
func (ic *InterruptController) WriteIRL(v uint16)  { ic.iprs[3] = v; ic.resort() }

func (ic *InterruptController) ReadIPRA() uint16 { return ic.iprs[0] }
func (ic *InterruptController) ReadIPRB() uint16 { return ic.iprs[1] }
func (ic *InterruptController) ReadIPRC() uint16 { return ic.iprs[2] }

func (ic *InterruptController) Raise(src int)      { ic.pending |= 1 << uint(src) }
func (ic *InterruptController) Clear(src int)      { ic.pending &^= 1 << uint(src) }
func (ic *InterruptController) Enable(src int)     { ic.enabled |= 1 << uint(src) }
func (ic *InterruptController) Disable(src int)    { ic.enabled &^= 1 << uint(src) }
func (ic *InterruptController) IsPending(src int) bool { return ic.pending&(1<<uint(src)) != 0 }

// NextEvent returns the event code of the highest-priority pending+enabled
// source whose priority exceeds imask, or (0, false) if none is eligible or
// bl (SR.BL) is set.
func (ic *InterruptController) NextEvent(bl bool, imask uint8) (uint16, bool) {
	if bl {
		return 0, false
	}
	for _, src := range ic.order {
		mask := uint32(1) << uint(src)
		if ic.pending&mask == 0 || ic.enabled&mask == 0 {
			continue
		}
		if ic.priority(src) > int(imask) {
			return intEventCodes[src], true
		}
	}
	return 0, false
}
