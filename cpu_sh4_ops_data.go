// cpu_sh4_ops_data.go - SH-4 data movement instructions

package main

// registerDataMoveOps installs the MOV family: register-register, the
// eight indexed/displacement/pre-decrement/post-increment addressing
// forms for each width, GBR-relative forms, and the immediate/PC-relative
// loads.
func registerDataMoveOps() {
	registerOp("0110nnnnmmmm0011", func(c *SH4Context, op uint16) { // MOV Rm,Rn
		c.R[opField_n(op)] = c.R[opField_m(op)]
	})

	registerOp("1110nnnniiiiiiii", func(c *SH4Context, op uint16) { // MOV #imm,Rn
		c.R[opField_n(op)] = uint32(opSImm8(op))
	})

	// MOV.B/W/L Rm,@Rn
	registerOp("0010nnnnmmmm0000", func(c *SH4Context, op uint16) {
		c.bus.Write8(c.R[opField_n(op)], uint8(c.R[opField_m(op)]))
	})
	registerOp("0010nnnnmmmm0001", func(c *SH4Context, op uint16) {
		c.bus.Write16(c.R[opField_n(op)], uint16(c.R[opField_m(op)]))
	})
	registerOp("0010nnnnmmmm0010", func(c *SH4Context, op uint16) {
		c.bus.Write32(c.R[opField_n(op)], c.R[opField_m(op)])
	})

	// MOV.B/W/L @Rm,Rn (sign-extended for B/W)
	registerOp("0110nnnnmmmm0000", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = uint32(int32(int8(c.bus.Read8(c.R[opField_m(op)]))))
	})
	registerOp("0110nnnnmmmm0001", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = uint32(int32(int16(c.bus.Read16(c.R[opField_m(op)]))))
	})
	registerOp("0110nnnnmmmm0010", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = c.bus.Read32(c.R[opField_m(op)])
	})

	// MOV.B/W/L Rm,@-Rn (pre-decrement store)
	registerOp("0010nnnnmmmm0100", func(c *SH4Context, op uint16) {
		n := opField_n(op)
		c.R[n]--
		c.bus.Write8(c.R[n], uint8(c.R[opField_m(op)]))
	})
	registerOp("0010nnnnmmmm0101", func(c *SH4Context, op uint16) {
		n := opField_n(op)
		c.R[n] -= 2
		c.bus.Write16(c.R[n], uint16(c.R[opField_m(op)]))
	})
	registerOp("0010nnnnmmmm0110", func(c *SH4Context, op uint16) {
		n := opField_n(op)
		c.R[n] -= 4
		c.bus.Write32(c.R[n], c.R[opField_m(op)])
	})

	// MOV.B/W/L @Rm+,Rn (post-increment load)
	registerOp("0110nnnnmmmm0100", func(c *SH4Context, op uint16) {
		n, m := opField_n(op), opField_m(op)
		c.R[n] = uint32(int32(int8(c.bus.Read8(c.R[m]))))
		if n != m {
			c.R[m]++
		}
	})
	registerOp("0110nnnnmmmm0101", func(c *SH4Context, op uint16) {
		n, m := opField_n(op), opField_m(op)
		c.R[n] = uint32(int32(int16(c.bus.Read16(c.R[m]))))
		if n != m {
			c.R[m] += 2
		}
	})
	registerOp("0110nnnnmmmm0110", func(c *SH4Context, op uint16) {
		n, m := opField_n(op), opField_m(op)
		c.R[n] = c.bus.Read32(c.R[m])
		if n != m {
			c.R[m] += 4
		}
	})

	// MOV.B/W/L Rm,@(R0,Rn) / @(R0,Rm),Rn
	registerOp("0000nnnnmmmm0100", func(c *SH4Context, op uint16) {
		c.bus.Write8(c.R[opField_n(op)]+c.R[0], uint8(c.R[opField_m(op)]))
	})
	registerOp("0000nnnnmmmm0101", func(c *SH4Context, op uint16) {
		c.bus.Write16(c.R[opField_n(op)]+c.R[0], uint16(c.R[opField_m(op)]))
	})
	registerOp("0000nnnnmmmm0110", func(c *SH4Context, op uint16) {
		c.bus.Write32(c.R[opField_n(op)]+c.R[0], c.R[opField_m(op)])
	})
	registerOp("0000nnnnmmmm1100", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = uint32(int32(int8(c.bus.Read8(c.R[opField_m(op)] + c.R[0]))))
	})
	registerOp("0000nnnnmmmm1101", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = uint32(int32(int16(c.bus.Read16(c.R[opField_m(op)] + c.R[0]))))
	})
	registerOp("0000nnnnmmmm1110", func(c *SH4Context, op uint16) {
		c.R[opField_n(op)] = c.bus.Read32(c.R[opField_m(op)] + c.R[0])
	})

	// MOV.B/W/L R0,@(disp,Rm) and @(disp,Rm),R0 — 4-bit displacement,
	// scaled by access width.
	registerOp("10000000mmmmiiii", func(c *SH4Context, op uint16) { // MOV.B R0,@(disp,Rm)
		c.bus.Write8(c.R[opField_m(op)]+opImm4(op), uint8(c.R[0]))
	})
	registerOp("10000001mmmmiiii", func(c *SH4Context, op uint16) { // MOV.W R0,@(disp,Rm)
		c.bus.Write16(c.R[opField_m(op)]+opImm4(op)*2, uint16(c.R[0]))
	})
	registerOp("0001nnnnmmmmiiii", func(c *SH4Context, op uint16) { // MOV.L Rm,@(disp,Rn)
		c.bus.Write32(c.R[opField_n(op)]+opImm4(op)*4, c.R[opField_m(op)])
	})
	registerOp("10000100mmmmiiii", func(c *SH4Context, op uint16) { // MOV.B @(disp,Rm),R0
		c.R[0] = uint32(int32(int8(c.bus.Read8(c.R[opField_m(op)] + opImm4(op)))))
	})
	registerOp("10000101mmmmiiii", func(c *SH4Context, op uint16) { // MOV.W @(disp,Rm),R0
		c.R[0] = uint32(int32(int16(c.bus.Read16(c.R[opField_m(op)] + opImm4(op)*2))))
	})
	registerOp("0101nnnnmmmmiiii", func(c *SH4Context, op uint16) { // MOV.L @(disp,Rm),Rn
		c.R[opField_n(op)] = c.bus.Read32(c.R[opField_m(op)] + opImm4(op)*4)
	})

	// MOV.B/W/L R0,@(disp8,GBR) and @(disp8,GBR),R0
	registerOp("11000000iiiiiiii", func(c *SH4Context, op uint16) {
		c.bus.Write8(c.GBR+opImm8(op), uint8(c.R[0]))
	})
	registerOp("11000001iiiiiiii", func(c *SH4Context, op uint16) {
		c.bus.Write16(c.GBR+opImm8(op)*2, uint16(c.R[0]))
	})
	registerOp("11000010iiiiiiii", func(c *SH4Context, op uint16) {
		c.bus.Write32(c.GBR+opImm8(op)*4, c.R[0])
	})
	registerOp("11000100iiiiiiii", func(c *SH4Context, op uint16) {
		c.R[0] = uint32(int32(int8(c.bus.Read8(c.GBR + opImm8(op)))))
	})
	registerOp("11000101iiiiiiii", func(c *SH4Context, op uint16) {
		c.R[0] = uint32(int32(int16(c.bus.Read16(c.GBR + opImm8(op)*2))))
	})
	registerOp("11000110iiiiiiii", func(c *SH4Context, op uint16) {
		c.R[0] = c.bus.Read32(c.GBR + opImm8(op)*4)
	})

	// MOVA @(disp8,PC),R0 — PC+4 aligned to 4 bytes before adding disp*4.
	registerOp("11000111iiiiiiii", func(c *SH4Context, op uint16) {
		base := (c.pc0 + 4) &^ 3
		c.R[0] = base + opImm8(op)*4
	})

	// MOV.W/L @(disp8,PC),Rn — same PC+4 alignment rule.
	registerOp("1001nnnniiiiiiii", func(c *SH4Context, op uint16) {
		base := (c.pc0 + 4) &^ 3
		c.R[opField_n(op)] = uint32(int32(int16(c.bus.Read16(base + opImm8(op)*2))))
	})
	registerOp("1101nnnniiiiiiii", func(c *SH4Context, op uint16) {
		base := (c.pc0 + 4) &^ 3
		c.R[opField_n(op)] = c.bus.Read32(base + opImm8(op)*4)
	})

	registerOp("0000nnnn00101001", func(c *SH4Context, op uint16) { // MOVT Rn
		c.R[opField_n(op)] = c.srT
	})

	registerOp("0000nnnn11000011", func(c *SH4Context, op uint16) { // MOVCA.L R0,@Rn
		c.bus.Write32(c.R[opField_n(op)], c.R[0])
	})

	registerOp("0110nnnnmmmm1000", func(c *SH4Context, op uint16) { // SWAP.B
		m := c.R[opField_m(op)]
		c.R[opField_n(op)] = m&0xFFFF0000 | (m&0xFF)<<8 | (m>>8)&0xFF
	})
	registerOp("0110nnnnmmmm1001", func(c *SH4Context, op uint16) { // SWAP.W
		m := c.R[opField_m(op)]
		c.R[opField_n(op)] = m<<16 | m>>16
	})
	registerOp("0010nnnnmmmm1101", func(c *SH4Context, op uint16) { // XTRCT
		n, m := c.R[opField_n(op)], c.R[opField_m(op)]
		c.R[opField_n(op)] = (n >> 16) | (m << 16)
	})
}
