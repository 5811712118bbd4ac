// disasm.go - standalone SH-4 opcode-to-mnemonic table

/*
disasm.go - SH-4 disassembly table

A small, self-contained pattern table over the same {0,1,n,m,i,d}
wildcard-character convention cpu_sh4_decoder.go uses for the real
dispatch table, re-expressed here as a flat slice walked front-to-back
(this tool decodes a handful of instructions at a time, not sixty-four
thousand dispatch slots, so a precomputed table is unwarranted). It
covers the instruction forms common in boot and trampoline code: moves,
the common ALU ops, compare-and-branch, and the call/return family.
Anything else prints as a raw ".word" line rather than guessing.
*/

package main

import "fmt"

type pattern struct {
	mask, match uint16
	format      func(pc uint32, op uint16) string
}

func parsePattern(s string) (mask, match uint16) {
	for _, ch := range s {
		mask <<= 1
		match <<= 1
		switch ch {
		case '0':
			mask |= 1
		case '1':
			mask |= 1
			match |= 1
		}
	}
	return mask, match
}

func fieldN(op uint16) int { return int((op >> 8) & 0xF) }
func fieldM(op uint16) int { return int((op >> 4) & 0xF) }

func signExtend8(v uint16) int32  { return int32(int8(v & 0xFF)) }
func signExtend12(v uint16) int32 {
	d := int32(v & 0xFFF)
	if d&0x800 != 0 {
		d |= ^int32(0xFFF)
	}
	return d
}

var table []pattern

func addPattern(s string, format func(pc uint32, op uint16) string) {
	mask, match := parsePattern(s)
	table = append(table, pattern{mask: mask, match: match, format: format})
}

func init() {
	addPattern("0000000000001001", func(pc uint32, op uint16) string { return "nop" })
	addPattern("0000000000001011", func(pc uint32, op uint16) string { return "rts" })
	addPattern("0000000000101011", func(pc uint32, op uint16) string { return "rte" })
	addPattern("0000000000011011", func(pc uint32, op uint16) string { return "sleep" })

	addPattern("1110nnnniiiiiiii", func(pc uint32, op uint16) string {
		return fmt.Sprintf("mov #%d, R%d", int32(int8(op&0xFF)), fieldN(op))
	})
	addPattern("1001nnnndddddddd", func(pc uint32, op uint16) string {
		d := uint32(op&0xFF) * 2
		return fmt.Sprintf("mov.w @(%d,PC), R%d", d, fieldN(op))
	})
	addPattern("1101nnnndddddddd", func(pc uint32, op uint16) string {
		d := uint32(op&0xFF) * 4
		return fmt.Sprintf("mov.l @(%d,PC), R%d", d, fieldN(op))
	})
	addPattern("0110nnnnmmmm0011", func(pc uint32, op uint16) string {
		return fmt.Sprintf("mov R%d, R%d", fieldM(op), fieldN(op))
	})
	addPattern("0010nnnnmmmm0010", func(pc uint32, op uint16) string {
		return fmt.Sprintf("mov.l R%d, @R%d", fieldM(op), fieldN(op))
	})
	addPattern("0110nnnnmmmm0010", func(pc uint32, op uint16) string {
		return fmt.Sprintf("mov.l @R%d, R%d", fieldM(op), fieldN(op))
	})

	addPattern("0011nnnnmmmm1100", func(pc uint32, op uint16) string {
		return fmt.Sprintf("add R%d, R%d", fieldM(op), fieldN(op))
	})
	addPattern("0111nnnniiiiiiii", func(pc uint32, op uint16) string {
		return fmt.Sprintf("add #%d, R%d", int32(int8(op&0xFF)), fieldN(op))
	})
	addPattern("0011nnnnmmmm1000", func(pc uint32, op uint16) string {
		return fmt.Sprintf("sub R%d, R%d", fieldM(op), fieldN(op))
	})
	addPattern("0011nnnnmmmm0000", func(pc uint32, op uint16) string {
		return fmt.Sprintf("cmp/eq R%d, R%d", fieldM(op), fieldN(op))
	})
	addPattern("0011nnnnmmmm0010", func(pc uint32, op uint16) string {
		return fmt.Sprintf("cmp/hs R%d, R%d", fieldM(op), fieldN(op))
	})

	addPattern("10001001dddddddd", func(pc uint32, op uint16) string {
		target := pc + 4 + uint32(signExtend8(op)*2)
		return fmt.Sprintf("bt 0x%08X", target)
	})
	addPattern("10001011dddddddd", func(pc uint32, op uint16) string {
		target := pc + 4 + uint32(signExtend8(op)*2)
		return fmt.Sprintf("bf 0x%08X", target)
	})
	addPattern("1010dddddddddddd", func(pc uint32, op uint16) string {
		target := pc + 4 + uint32(signExtend12(op)*2)
		return fmt.Sprintf("bra 0x%08X", target)
	})
	addPattern("1011dddddddddddd", func(pc uint32, op uint16) string {
		target := pc + 4 + uint32(signExtend12(op)*2)
		return fmt.Sprintf("bsr 0x%08X", target)
	})
	addPattern("0100mmmm00101011", func(pc uint32, op uint16) string {
		return fmt.Sprintf("jmp @R%d", fieldN(op))
	})
	addPattern("0100mmmm00001011", func(pc uint32, op uint16) string {
		return fmt.Sprintf("jsr @R%d", fieldN(op))
	})
}

// decode returns the mnemonic for a single SH-4 opcode at the given
// address, or a raw ".word" line if nothing in the table matches.
func decode(pc uint32, op uint16) string {
	for _, p := range table {
		if op&p.mask == p.match {
			return p.format(pc, op)
		}
	}
	return fmt.Sprintf(".word 0x%04X", op)
}
