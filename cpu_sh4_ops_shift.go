// cpu_sh4_ops_shift.go - SH-4 shift and rotate instructions

package main

// registerShiftOps installs the logical/arithmetic shifts (single-bit and
// the fixed 2/8/16-bit dynamic variants) and the rotate family, all of
// which feed or consume the T bit as a single-bit carry register.
func registerShiftOps() {
	registerOp("0100nnnn00000000", func(c *SH4Context, op uint16) { // SHLL Rn
		n := opField_n(op)
		c.srT = (c.R[n] >> 31) & 1
		c.R[n] <<= 1
	})
	registerOp("0100nnnn00000001", func(c *SH4Context, op uint16) { // SHLR Rn
		n := opField_n(op)
		c.srT = c.R[n] & 1
		c.R[n] >>= 1
	})
	registerOp("0100nnnn00100000", func(c *SH4Context, op uint16) { // SHAL Rn
		n := opField_n(op)
		c.srT = (c.R[n] >> 31) & 1
		c.R[n] <<= 1
	})
	registerOp("0100nnnn00100001", func(c *SH4Context, op uint16) { // SHAR Rn
		n := opField_n(op)
		c.srT = c.R[n] & 1
		c.R[n] = uint32(int32(c.R[n]) >> 1)
	})

	registerOp("0100nnnn00001000", func(c *SH4Context, op uint16) { c.R[opField_n(op)] <<= 2 })  // SHLL2
	registerOp("0100nnnn00011000", func(c *SH4Context, op uint16) { c.R[opField_n(op)] <<= 8 })  // SHLL8
	registerOp("0100nnnn00101000", func(c *SH4Context, op uint16) { c.R[opField_n(op)] <<= 16 }) // SHLL16
	registerOp("0100nnnn00001001", func(c *SH4Context, op uint16) { c.R[opField_n(op)] >>= 2 })  // SHLR2
	registerOp("0100nnnn00011001", func(c *SH4Context, op uint16) { c.R[opField_n(op)] >>= 8 })  // SHLR8
	registerOp("0100nnnn00101001", func(c *SH4Context, op uint16) { c.R[opField_n(op)] >>= 16 }) // SHLR16

	registerOp("0100nnnn00000100", func(c *SH4Context, op uint16) { // ROTL Rn
		n := opField_n(op)
		bit := (c.R[n] >> 31) & 1
		c.R[n] = c.R[n]<<1 | bit
		c.srT = bit
	})
	registerOp("0100nnnn00000101", func(c *SH4Context, op uint16) { // ROTR Rn
		n := opField_n(op)
		bit := c.R[n] & 1
		c.R[n] = c.R[n]>>1 | bit<<31
		c.srT = bit
	})
	registerOp("0100nnnn00100100", func(c *SH4Context, op uint16) { // ROTCL Rn
		n := opField_n(op)
		bit := (c.R[n] >> 31) & 1
		c.R[n] = c.R[n]<<1 | c.srT
		c.srT = bit
	})
	registerOp("0100nnnn00100101", func(c *SH4Context, op uint16) { // ROTCR Rn
		n := opField_n(op)
		bit := c.R[n] & 1
		c.R[n] = c.R[n]>>1 | c.srT<<31
		c.srT = bit
	})

	// SHAD/SHLD shift Rn left by Rm[4:0] when Rm is non-negative; a
	// negative Rm shifts right by (~Rm[4:0])+1, with the all-zero low
	// bits case meaning "shift right 32" (sign fill or zero fill).
	registerOp("0100nnnnmmmm1100", func(c *SH4Context, op uint16) { // SHAD Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rm := c.R[m]
		switch {
		case rm&0x80000000 == 0:
			c.R[n] <<= rm & 0x1F
		case rm&0x1F == 0:
			c.R[n] = uint32(int32(c.R[n]) >> 31)
		default:
			c.R[n] = uint32(int32(c.R[n]) >> ((^rm & 0x1F) + 1))
		}
	})
	registerOp("0100nnnnmmmm1101", func(c *SH4Context, op uint16) { // SHLD Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rm := c.R[m]
		switch {
		case rm&0x80000000 == 0:
			c.R[n] <<= rm & 0x1F
		case rm&0x1F == 0:
			c.R[n] = 0
		default:
			c.R[n] >>= (^rm & 0x1F) + 1
		}
	})
}
