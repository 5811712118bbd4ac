// cpu_sh4_ops_fpu.go - SH-4 floating point instructions

package main

import "math"

// registerFPUOps installs the single/double-precision arithmetic,
// compares, conversions, the vector/matrix helpers (FIPR, FTRV), and the
// FMOV family. Double-precision operands are read/written through
// ReadDR/WriteDR so the mixed-endian register-pair storage stays
// centralized in cpu_sh4.go.
func registerFPUOps() {
	registerOp("1111nnnnmmmm0000", func(c *SH4Context, op uint16) { // FADD
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			c.WriteDR(n, c.ReadDR(n)+c.ReadDR(m))
		} else {
			c.FR[n] += c.FR[m]
		}
	})
	registerOp("1111nnnnmmmm0001", func(c *SH4Context, op uint16) { // FSUB
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			c.WriteDR(n, c.ReadDR(n)-c.ReadDR(m))
		} else {
			c.FR[n] -= c.FR[m]
		}
	})
	registerOp("1111nnnnmmmm0010", func(c *SH4Context, op uint16) { // FMUL
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			c.WriteDR(n, c.ReadDR(n)*c.ReadDR(m))
		} else {
			c.FR[n] *= c.FR[m]
		}
	})
	registerOp("1111nnnnmmmm0011", func(c *SH4Context, op uint16) { // FDIV
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			c.WriteDR(n, c.ReadDR(n)/c.ReadDR(m))
		} else {
			c.FR[n] /= c.FR[m]
		}
	})
	registerOp("1111nnnnmmmm1110", func(c *SH4Context, op uint16) { // FMAC FR0,Rm,Rn
		n, m := opField_n(op), opField_m(op)
		c.FR[n] = c.FR[0]*c.FR[m] + c.FR[n]
	})

	setT := func(c *SH4Context, cond bool) {
		if cond {
			c.srT = 1
		} else {
			c.srT = 0
		}
	}
	registerOp("1111nnnnmmmm0100", func(c *SH4Context, op uint16) { // FCMP/EQ
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			setT(c, c.ReadDR(n) == c.ReadDR(m))
		} else {
			setT(c, c.FR[n] == c.FR[m])
		}
	})
	registerOp("1111nnnnmmmm0101", func(c *SH4Context, op uint16) { // FCMP/GT
		n, m := opField_n(op), opField_m(op)
		if c.fpscrPR() {
			setT(c, c.ReadDR(n) > c.ReadDR(m))
		} else {
			setT(c, c.FR[n] > c.FR[m])
		}
	})

	// FNEG/FABS flip or clear bit 31 of FRn regardless of precision mode:
	// for a double the sign lives in the high word, which is the even
	// slot, so the same single-slot bit twiddle covers both.
	registerOp("1111nnnn01001101", func(c *SH4Context, op uint16) { // FNEG FRn
		n := opField_n(op)
		c.FR[n] = math.Float32frombits(math.Float32bits(c.FR[n]) ^ 0x80000000)
	})
	registerOp("1111nnnn01011101", func(c *SH4Context, op uint16) { // FABS FRn
		n := opField_n(op)
		c.FR[n] = math.Float32frombits(math.Float32bits(c.FR[n]) &^ 0x80000000)
	})
	registerOp("1111nnnn01101101", func(c *SH4Context, op uint16) { // FSQRT FRn
		n := opField_n(op)
		if c.fpscrPR() {
			c.WriteDR(n, math.Sqrt(c.ReadDR(n)))
		} else {
			c.FR[n] = float32(math.Sqrt(float64(c.FR[n])))
		}
	})
	registerOp("1111nnnn01111101", func(c *SH4Context, op uint16) { // FSRRA FRn (single precision only)
		n := opField_n(op)
		c.FR[n] = float32(1.0 / math.Sqrt(float64(c.FR[n])))
	})

	registerOp("1111nnnn10001101", func(c *SH4Context, op uint16) { c.FR[opField_n(op)] = 0 })     // FLDI0
	registerOp("1111nnnn10011101", func(c *SH4Context, op uint16) { c.FR[opField_n(op)] = 1 })     // FLDI1
	registerOp("1111mmmm00011101", func(c *SH4Context, op uint16) { c.FPUL = math.Float32bits(c.FR[opField_n(op)]) }) // FLDS FRm,FPUL
	registerOp("1111nnnn00001101", func(c *SH4Context, op uint16) { c.FR[opField_n(op)] = math.Float32frombits(c.FPUL) }) // FSTS FPUL,FRn

	registerOp("1111nnnn00101101", func(c *SH4Context, op uint16) { // FLOAT FPUL,FRn/DRn
		n := opField_n(op)
		if c.fpscrPR() {
			c.WriteDR(n, float64(int32(c.FPUL)))
		} else {
			c.FR[n] = float32(int32(c.FPUL))
		}
	})

	// FTRC FRn/DRn,FPUL - saturating convert-to-integer. Thresholds match
	// the reference implementation's distinct single/double bounds
	// exactly (NaN->0; clamp at the representable int32 edges rather
	// than wrapping on overflow).
	registerOp("1111nnnn00111101", func(c *SH4Context, op uint16) {
		n := opField_n(op)
		if c.fpscrPR() {
			v := c.ReadDR(n)
			switch {
			case math.IsNaN(v):
				c.FPUL = 0
			case v >= 2147483648.0:
				c.FPUL = 0x7FFFFFFF
			case v < -2147483648.0:
				c.FPUL = 0x80000000
			default:
				c.FPUL = uint32(int32(v))
			}
		} else {
			v := c.FR[n]
			switch {
			case math.IsNaN(float64(v)):
				c.FPUL = 0
			case v >= 2147483520.0:
				c.FPUL = 0x7FFFFF80
			case v < -2147483648.0:
				c.FPUL = 0x80000000
			default:
				c.FPUL = uint32(int32(v))
			}
		}
	})

	registerOp("1111nnnn10111101", func(c *SH4Context, op uint16) { // FCNVDS DRn,FPUL
		c.FPUL = math.Float32bits(float32(c.ReadDR(opField_n(op))))
	})
	registerOp("1111nnnn10101101", func(c *SH4Context, op uint16) { // FCNVSD FPUL,DRn
		c.WriteDR(opField_n(op), float64(math.Float32frombits(c.FPUL)))
	})

	registerOp("1111101111111101", func(c *SH4Context, op uint16) { c.StoreFPSCR(c.FPSCR ^ fpscrSZBit) }) // FSCHG
	registerOp("1111001111111101", func(c *SH4Context, op uint16) { c.StoreFPSCR(c.FPSCR ^ fpscrFRBit) }) // FRCHG

	// FMOV family. SZ selects single vs register-pair transfer width; in
	// pair mode bit 0 of the register field selects the XF bank (the XD
	// forms), so FMOV can spill/fill the back bank without an FRCHG.
	registerOp("1111nnnnmmmm1100", func(c *SH4Context, op uint16) { // FMOV FRm,FRn / DRm,DRn / XDm,XDn
		n, m := opField_n(op), opField_m(op)
		if c.fpscrSZ() {
			w0, w1 := c.readFPPair(m)
			c.writeFPPair(n, w0, w1)
		} else {
			c.FR[n] = c.FR[m]
		}
	})
	registerOp("1111nnnnmmmm1000", func(c *SH4Context, op uint16) { // FMOV @Rm,FRn
		n, m := opField_n(op), opField_m(op)
		if c.fpscrSZ() {
			c.writeFPPair(n, c.bus.Read32(c.R[m]), c.bus.Read32(c.R[m]+4))
		} else {
			c.FR[n] = math.Float32frombits(c.bus.Read32(c.R[m]))
		}
	})
	registerOp("1111nnnnmmmm1010", func(c *SH4Context, op uint16) { // FMOV FRm,@Rn
		n, m := opField_n(op), opField_m(op)
		if c.fpscrSZ() {
			w0, w1 := c.readFPPair(m)
			c.bus.Write32(c.R[n], w0)
			c.bus.Write32(c.R[n]+4, w1)
		} else {
			c.bus.Write32(c.R[n], math.Float32bits(c.FR[m]))
		}
	})
	registerOp("1111nnnnmmmm1001", func(c *SH4Context, op uint16) { // FMOV @Rm+,FRn
		n, m := opField_n(op), opField_m(op)
		if c.fpscrSZ() {
			c.writeFPPair(n, c.bus.Read32(c.R[m]), c.bus.Read32(c.R[m]+4))
			c.R[m] += 8
		} else {
			c.FR[n] = math.Float32frombits(c.bus.Read32(c.R[m]))
			c.R[m] += 4
		}
	})
	registerOp("1111nnnnmmmm1011", func(c *SH4Context, op uint16) { // FMOV FRm,@-Rn
		n, m := opField_n(op), opField_m(op)
		if c.fpscrSZ() {
			w0, w1 := c.readFPPair(m)
			c.R[n] -= 8
			c.bus.Write32(c.R[n], w0)
			c.bus.Write32(c.R[n]+4, w1)
		} else {
			c.R[n] -= 4
			c.bus.Write32(c.R[n], math.Float32bits(c.FR[m]))
		}
	})
	registerOp("1111nnnnmmmm0110", func(c *SH4Context, op uint16) { // FMOV @(R0,Rm),FRn
		n, m := opField_n(op), opField_m(op)
		addr := c.R[m] + c.R[0]
		if c.fpscrSZ() {
			c.writeFPPair(n, c.bus.Read32(addr), c.bus.Read32(addr+4))
		} else {
			c.FR[n] = math.Float32frombits(c.bus.Read32(addr))
		}
	})
	registerOp("1111nnnnmmmm0111", func(c *SH4Context, op uint16) { // FMOV FRm,@(R0,Rn)
		n, m := opField_n(op), opField_m(op)
		addr := c.R[n] + c.R[0]
		if c.fpscrSZ() {
			w0, w1 := c.readFPPair(m)
			c.bus.Write32(addr, w0)
			c.bus.Write32(addr+4, w1)
		} else {
			c.bus.Write32(addr, math.Float32bits(c.FR[m]))
		}
	})

	// FSCA FPUL,DRn - the low 16 bits of FPUL are an angle in 1/65536ths
	// of a full turn; sine lands in the even slot, cosine in the odd.
	// Single-precision only, like FSRRA.
	registerOp("1111nnn011111101", func(c *SH4Context, op uint16) {
		n := opField_n(op) & 0xE
		rads := float64(c.FPUL&0xFFFF) / 32768.0 * math.Pi
		c.FR[n] = float32(math.Sin(rads))
		c.FR[n+1] = float32(math.Cos(rads))
	})

	// FIPR FVm,FVn - four-element dot product, result in the last
	// element of FVn. FTRV - 4x4 matrix-vector transform using XF as the
	// matrix bank. Both are single-precision-only per the architecture.
	registerOp("1111nnmm11101101", func(c *SH4Context, op uint16) {
		n := (opField_n(op) & 0xC)
		m := (opField_n(op) & 0x3) << 2
		var sum float32
		for i := 0; i < 4; i++ {
			sum += c.FR[m+i] * c.FR[n+i]
		}
		c.FR[n+3] = sum
	})
	registerOp("1111nn0111111101", func(c *SH4Context, op uint16) {
		n := opField_n(op) & 0xC
		var in [4]float32
		copy(in[:], c.FR[n:n+4])
		for row := 0; row < 4; row++ {
			var sum float32
			for col := 0; col < 4; col++ {
				sum += c.XF[col*4+row] * in[col]
			}
			c.FR[n+row] = sum
		}
	})
}
