// main.go - dcstep: a standalone SH-4 disassembly stepper

/*
dcstep walks a flat binary image instruction by instruction and prints
each one's address, raw opcode and decoded mnemonic, the same job
cmd/ie32to64 does for IE32 assembly source but for already-assembled
SH-4 machine code. It shares nothing with the machine core beyond the
instruction encoding itself: no CPU context, no memory bus, no
peripherals - just a flag-driven walk over a byte slice, built on
spf13/cobra the way oisee/z80-optimizer's cmd/z80opt is.
*/

package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var startAddr uint32
	var count int

	root := &cobra.Command{
		Use:   "dcstep <image>",
		Short: "Disassemble a flat SH-4 binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(args[0], startAddr, count)
		},
	}

	root.Flags().Uint32Var(&startAddr, "addr", 0xA0000000, "address of the image's first byte")
	root.Flags().IntVar(&count, "count", 32, "number of instructions to print")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDisasm(path string, startAddr uint32, count int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for i := 0; i < count; i++ {
		offset := i * 2
		if offset+2 > len(data) {
			break
		}
		pc := startAddr + uint32(offset)
		op := binary.LittleEndian.Uint16(data[offset:])
		fmt.Printf("%08X: %04X  %s\n", pc, op, decode(pc, op))
	}
	return nil
}
