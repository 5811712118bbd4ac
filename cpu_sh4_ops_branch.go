// cpu_sh4_ops_branch.go - SH-4 compare and branch instructions

package main

// registerCompareBranchOps installs the CMP/ family (all setting T), the
// conditional/unconditional branches including their delayed forms, and
// the subroutine call/return instructions.
func registerCompareBranchOps() {
	setT := func(c *SH4Context, cond bool) {
		if cond {
			c.srT = 1
		} else {
			c.srT = 0
		}
	}

	registerOp("0011nnnnmmmm0000", func(c *SH4Context, op uint16) { // CMP/EQ Rm,Rn
		setT(c, c.R[opField_n(op)] == c.R[opField_m(op)])
	})
	registerOp("10001000iiiiiiii", func(c *SH4Context, op uint16) { // CMP/EQ #imm,R0
		setT(c, int32(c.R[0]) == opSImm8(op))
	})
	registerOp("0011nnnnmmmm0010", func(c *SH4Context, op uint16) { // CMP/HS Rm,Rn
		setT(c, c.R[opField_n(op)] >= c.R[opField_m(op)])
	})
	registerOp("0011nnnnmmmm0011", func(c *SH4Context, op uint16) { // CMP/GE Rm,Rn
		setT(c, int32(c.R[opField_n(op)]) >= int32(c.R[opField_m(op)]))
	})
	registerOp("0011nnnnmmmm0110", func(c *SH4Context, op uint16) { // CMP/HI Rm,Rn
		setT(c, c.R[opField_n(op)] > c.R[opField_m(op)])
	})
	registerOp("0011nnnnmmmm0111", func(c *SH4Context, op uint16) { // CMP/GT Rm,Rn
		setT(c, int32(c.R[opField_n(op)]) > int32(c.R[opField_m(op)]))
	})
	registerOp("0100nnnn00010001", func(c *SH4Context, op uint16) { // CMP/PZ Rn
		setT(c, int32(c.R[opField_n(op)]) >= 0)
	})
	registerOp("0100nnnn00010101", func(c *SH4Context, op uint16) { // CMP/PL Rn
		setT(c, int32(c.R[opField_n(op)]) > 0)
	})

	// CMP/STR Rm,Rn - true if any of the four byte lanes match, tested by
	// XOR then a per-byte zero test (ported from the reference
	// implementation's bit trick rather than four separate comparisons).
	registerOp("0010nnnnmmmm1100", func(c *SH4Context, op uint16) {
		x := c.R[opField_n(op)] ^ c.R[opField_m(op)]
		b0 := (x & 0xFF) == 0
		b1 := ((x >> 8) & 0xFF) == 0
		b2 := ((x >> 16) & 0xFF) == 0
		b3 := ((x >> 24) & 0xFF) == 0
		setT(c, b0 || b1 || b2 || b3)
	})

	branchTarget := func(c *SH4Context, disp int32) uint32 {
		return uint32(int32(c.pc0+4) + disp*2)
	}

	registerOp("10001001iiiiiiii", func(c *SH4Context, op uint16) { // BT label
		if c.srT != 0 {
			target := branchTarget(c, opDisp8(op))
			c.pc1 = target
			c.pc2 = target + 2
		}
	})
	registerOp("10001011iiiiiiii", func(c *SH4Context, op uint16) { // BF label
		if c.srT == 0 {
			target := branchTarget(c, opDisp8(op))
			c.pc1 = target
			c.pc2 = target + 2
		}
	})
	registerOp("10001101iiiiiiii", func(c *SH4Context, op uint16) { // BT/S label
		if c.srT != 0 {
			c.pc2 = branchTarget(c, opDisp8(op))
			c.isDelaySlot1 = true
		}
	})
	registerOp("10001111iiiiiiii", func(c *SH4Context, op uint16) { // BF/S label
		if c.srT == 0 {
			c.pc2 = branchTarget(c, opDisp8(op))
			c.isDelaySlot1 = true
		}
	})

	registerOp("1010dddddddddddd", func(c *SH4Context, op uint16) { // BRA label
		c.pc2 = branchTarget(c, opDisp12(op))
		c.isDelaySlot1 = true
	})
	registerOp("1011dddddddddddd", func(c *SH4Context, op uint16) { // BSR label
		c.PR = c.pc0 + 4
		c.pc2 = branchTarget(c, opDisp12(op))
		c.isDelaySlot1 = true
	})

	registerOp("0000nnnn00100011", func(c *SH4Context, op uint16) { // BRAF Rn
		c.pc2 = c.pc0 + 4 + c.R[opField_n(op)]
		c.isDelaySlot1 = true
	})
	registerOp("0000nnnn00000011", func(c *SH4Context, op uint16) { // BSRF Rn
		c.PR = c.pc0 + 4
		c.pc2 = c.pc0 + 4 + c.R[opField_n(op)]
		c.isDelaySlot1 = true
	})

	registerOp("0100nnnn00101011", func(c *SH4Context, op uint16) { // JMP @Rn
		c.pc2 = c.R[opField_n(op)]
		c.isDelaySlot1 = true
	})
	registerOp("0100nnnn00001011", func(c *SH4Context, op uint16) { // JSR @Rn
		c.PR = c.pc0 + 4
		c.pc2 = c.R[opField_n(op)]
		c.isDelaySlot1 = true
	})
	registerOp("0000000000001011", func(c *SH4Context, op uint16) { // RTS
		c.pc2 = c.PR
		c.isDelaySlot1 = true
	})
}
