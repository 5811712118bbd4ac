// cpu_sh4_ops_alu.go - SH-4 arithmetic and logic instructions

package main

// registerALUOps installs the integer ALU: add/sub families with their
// carry and overflow variants, bitwise ops (AND/OR/XOR/TST, register and
// GBR-indexed-byte forms), sign/zero extension, and the multiply family
// including the signed/unsigned double-precision multiplies and the
// DIV0/DIV1 single-step division primitives.
func registerALUOps() {
	registerOp("0011nnnnmmmm1100", func(c *SH4Context, op uint16) { // ADD Rm,Rn
		c.R[opField_n(op)] += c.R[opField_m(op)]
	})
	registerOp("0111nnnniiiiiiii", func(c *SH4Context, op uint16) { // ADD #imm,Rn
		c.R[opField_n(op)] += uint32(opSImm8(op))
	})

	registerOp("0011nnnnmmmm1110", func(c *SH4Context, op uint16) { // ADDC Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rn, rm := c.R[n], c.R[m]
		sum := rn + rm + c.srT
		carry := uint32(0)
		if sum < rn || (sum == rn && c.srT != 0) {
			carry = 1
		}
		c.R[n] = sum
		c.srT = carry
	})

	registerOp("0011nnnnmmmm1111", func(c *SH4Context, op uint16) { // ADDV Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rn, rm := int32(c.R[n]), int32(c.R[m])
		sum := rn + rm
		overflow := (rn >= 0) == (rm >= 0) && (sum >= 0) != (rn >= 0)
		c.R[n] = uint32(sum)
		if overflow {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	registerOp("0011nnnnmmmm1000", func(c *SH4Context, op uint16) { // SUB Rm,Rn
		c.R[opField_n(op)] -= c.R[opField_m(op)]
	})

	registerOp("0011nnnnmmmm1010", func(c *SH4Context, op uint16) { // SUBC Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rn, rm := c.R[n], c.R[m]
		diff := rn - rm - c.srT
		borrow := uint32(0)
		if rn < rm || (rn == rm && c.srT != 0) {
			borrow = 1
		}
		c.R[n] = diff
		c.srT = borrow
	})

	registerOp("0011nnnnmmmm1011", func(c *SH4Context, op uint16) { // SUBV Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rn, rm := int32(c.R[n]), int32(c.R[m])
		diff := rn - rm
		overflow := (rn >= 0) != (rm >= 0) && (diff >= 0) != (rn >= 0)
		c.R[n] = uint32(diff)
		if overflow {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	registerOp("0010nnnnmmmm1001", func(c *SH4Context, op uint16) { // AND Rm,Rn
		c.R[opField_n(op)] &= c.R[opField_m(op)]
	})
	registerOp("11001001iiiiiiii", func(c *SH4Context, op uint16) { // AND #imm,R0
		c.R[0] &= opImm8(op)
	})
	registerOp("11001101iiiiiiii", func(c *SH4Context, op uint16) { // AND.B #imm,@(R0,GBR)
		addr := c.GBR + c.R[0]
		c.bus.Write8(addr, c.bus.Read8(addr)&uint8(opImm8(op)))
	})

	registerOp("0010nnnnmmmm1000", func(c *SH4Context, op uint16) { // TST Rm,Rn
		if c.R[opField_n(op)]&c.R[opField_m(op)] == 0 {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})
	registerOp("11001000iiiiiiii", func(c *SH4Context, op uint16) { // TST #imm,R0
		if c.R[0]&opImm8(op) == 0 {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})
	registerOp("11001100iiiiiiii", func(c *SH4Context, op uint16) { // TST.B #imm,@(R0,GBR)
		v := c.bus.Read8(c.GBR + c.R[0])
		if uint32(v)&opImm8(op) == 0 {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	registerOp("0010nnnnmmmm1011", func(c *SH4Context, op uint16) { // OR Rm,Rn
		c.R[opField_n(op)] |= c.R[opField_m(op)]
	})
	registerOp("11001011iiiiiiii", func(c *SH4Context, op uint16) { // OR #imm,R0
		c.R[0] |= opImm8(op)
	})
	registerOp("11001111iiiiiiii", func(c *SH4Context, op uint16) { // OR.B #imm,@(R0,GBR)
		addr := c.GBR + c.R[0]
		c.bus.Write8(addr, c.bus.Read8(addr)|uint8(opImm8(op)))
	})

	registerOp("0010nnnnmmmm1010", func(c *SH4Context, op uint16) { // XOR Rm,Rn
		c.R[opField_n(op)] ^= c.R[opField_m(op)]
	})
	registerOp("11001010iiiiiiii", func(c *SH4Context, op uint16) { // XOR #imm,R0
		c.R[0] ^= opImm8(op)
	})
	registerOp("11001110iiiiiiii", func(c *SH4Context, op uint16) { // XOR.B #imm,@(R0,GBR)
		addr := c.GBR + c.R[0]
		c.bus.Write8(addr, c.bus.Read8(addr)^uint8(opImm8(op)))
	})

	registerOp("0110nnnnmmmm0111", func(c *SH4Context, op uint16) { // NOT Rm,Rn
		c.R[opField_n(op)] = ^c.R[opField_m(op)]
	})
	registerOp("0110nnnnmmmm1011", func(c *SH4Context, op uint16) { // NEG Rm,Rn
		c.R[opField_n(op)] = -c.R[opField_m(op)]
	})
	registerOp("0110nnnnmmmm1010", func(c *SH4Context, op uint16) { // NEGC Rm,Rn
		n, m := opField_n(op), opField_m(op)
		rm := c.R[m]
		diff := uint32(0) - rm - c.srT
		borrow := uint32(0)
		if rm != 0 || c.srT != 0 {
			borrow = 1
		}
		c.R[n] = diff
		c.srT = borrow
	})

	registerOp("0110nnnnmmmm1100", func(c *SH4Context, op uint16) { // EXTU.B
		c.R[opField_n(op)] = c.R[opField_m(op)] & 0xFF
	})
	registerOp("0110nnnnmmmm1101", func(c *SH4Context, op uint16) { // EXTU.W
		c.R[opField_n(op)] = c.R[opField_m(op)] & 0xFFFF
	})
	registerOp("0110nnnnmmmm1110", func(c *SH4Context, op uint16) { // EXTS.B
		c.R[opField_n(op)] = uint32(int32(int8(c.R[opField_m(op)])))
	})
	registerOp("0110nnnnmmmm1111", func(c *SH4Context, op uint16) { // EXTS.W
		c.R[opField_n(op)] = uint32(int32(int16(c.R[opField_m(op)])))
	})

	registerOp("0000nnnnmmmm0111", func(c *SH4Context, op uint16) { // MUL.L Rm,Rn
		c.MACL = c.R[opField_n(op)] * c.R[opField_m(op)]
	})
	registerOp("0010nnnnmmmm1111", func(c *SH4Context, op uint16) { // MULS.W Rm,Rn
		s := int32(int16(c.R[opField_n(op)])) * int32(int16(c.R[opField_m(op)]))
		c.MACL = uint32(s)
	})
	registerOp("0010nnnnmmmm1110", func(c *SH4Context, op uint16) { // MULU.W Rm,Rn
		c.MACL = uint32(uint16(c.R[opField_n(op)])) * uint32(uint16(c.R[opField_m(op)]))
	})

	registerOp("0011nnnnmmmm1101", func(c *SH4Context, op uint16) { // DMULS.L Rm,Rn
		prod := int64(int32(c.R[opField_n(op)])) * int64(int32(c.R[opField_m(op)]))
		c.MACH = uint32(uint64(prod) >> 32)
		c.MACL = uint32(prod)
	})
	registerOp("0011nnnnmmmm0101", func(c *SH4Context, op uint16) { // DMULU.L Rm,Rn
		prod := uint64(c.R[opField_n(op)]) * uint64(c.R[opField_m(op)])
		c.MACH = uint32(prod >> 32)
		c.MACL = uint32(prod)
	})

	registerOp("0100nnnn00010000", func(c *SH4Context, op uint16) { // DT Rn
		n := opField_n(op)
		c.R[n]--
		if c.R[n] == 0 {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	registerOp("0010nnnnmmmm0111", func(c *SH4Context, op uint16) { // DIV0S Rm,Rn
		n, m := opField_n(op), opField_m(op)
		q := (c.R[n] >> 31) & 1
		s := (c.R[m] >> 31) & 1
		c.srRest = c.srRest&^srQBit&^srMBit | q<<8 | s<<9
		if q != s {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	registerOp("0000000000011001", func(c *SH4Context, op uint16) { // DIV0U
		c.srRest &^= srQBit | srMBit
		c.srT = 0
	})

	// DIV1 Rm,Rn - single-step restoring division, ported from the
	// reference implementation's exact old-Q/M/T recipe (including the
	// Rm==Rn tmp2 aliasing quirk).
	registerOp("0011nnnnmmmm0100", func(c *SH4Context, op uint16) {
		n, m := opField_n(op), opField_m(op)
		q := (c.srRest >> 8) & 1
		mBit := (c.srRest >> 9) & 1
		rn := c.R[n]
		rm := c.R[m]

		oldQ := q
		q = (rn >> 31) & 1
		rn = rn<<1 | c.srT

		var tmp0 uint32
		var tmp2 uint32
		tmp2 = rm
		if m == n {
			tmp2 = rn // Rm aliases Rn: the operand is the already-shifted dividend
		}

		if oldQ == 0 {
			if mBit == 0 {
				tmp0 = rn
				rn -= tmp2
				carry := rn > tmp0
				q ^= b2u(carry) ^ mBit
			} else {
				tmp0 = rn
				rn += tmp2
				carry := rn < tmp0
				q ^= b2u(carry) ^ mBit
			}
		} else {
			if mBit == 0 {
				tmp0 = rn
				rn += tmp2
				carry := rn < tmp0
				q ^= b2u(carry) ^ mBit
			} else {
				tmp0 = rn
				rn -= tmp2
				carry := rn > tmp0
				q ^= b2u(carry) ^ mBit
			}
		}

		c.R[n] = rn
		c.srRest = c.srRest&^srQBit | q<<8
		if q == mBit {
			c.srT = 1
		} else {
			c.srT = 0
		}
	})

	// MAC.W/MAC.L share DIV1's Rm==Rn aliasing quirk: with one register
	// naming both streams, the second operand comes from Rn+width and the
	// pointer advances a single step, not two.
	registerOp("0100nnnnmmmm1111", func(c *SH4Context, op uint16) { // MAC.W @Rm+,@Rn+
		n, m := opField_n(op), opField_m(op)
		a := int32(int16(c.bus.Read16(c.R[n])))
		var b int32
		if n == m {
			b = int32(int16(c.bus.Read16(c.R[n] + 2)))
			c.R[n] += 2
		} else {
			b = int32(int16(c.bus.Read16(c.R[m])))
			c.R[m] += 2
			c.R[n] += 2
		}
		c.MACL += uint32(a * b)
	})
	registerOp("0000nnnnmmmm1111", func(c *SH4Context, op uint16) { // MAC.L @Rm+,@Rn+
		n, m := opField_n(op), opField_m(op)
		a := int64(int32(c.bus.Read32(c.R[n])))
		var b int64
		if n == m {
			b = int64(int32(c.bus.Read32(c.R[n] + 4)))
			c.R[n] += 4
		} else {
			b = int64(int32(c.bus.Read32(c.R[m])))
			c.R[m] += 4
			c.R[n] += 4
		}
		acc := int64(c.MACH)<<32 | int64(c.MACL)
		acc += a * b
		c.MACH = uint32(uint64(acc) >> 32)
		c.MACL = uint32(acc)
	})
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
