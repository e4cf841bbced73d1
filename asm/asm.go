// Package asm implements the assembler / link pass: it takes the symbolic
// instruction buffer produced by package emit and resolves every label
// reference into a 4-byte big-endian absolute byte offset, producing the
// final packed bytecode sequence.
//
// The two-pass design — first lay out bytes and record label offsets and
// reference sites, then patch every reference — mirrors the label
// resolution approach used by assemblers in the wild (forward jump targets
// are unknown on first encounter and must be backpatched once their
// address is known).
package asm

import (
	"fmt"

	"github.com/clscript/clscript/code"
	"github.com/clscript/clscript/emit"
)

// site records where a label reference's 4-byte placeholder was written,
// so it can be patched once every label's address is known.
type site struct {
	name   string
	offset int
}

// Assemble resolves every Label/Reference pair in buf and returns the
// packed byte sequence. It returns an error if any Reference names a label
// that was never defined.
func Assemble(buf *emit.Buffer) (code.Instructions, error) {
	var out []byte
	labels := make(map[string]int)
	var sites []site

	for _, ins := range buf.Instructions {
		switch ins.Kind {
		case emit.KindLabel:
			if _, exists := labels[ins.Name]; exists {
				return nil, fmt.Errorf("asm: duplicate label %q", ins.Name)
			}
			labels[ins.Name] = len(out)
		case emit.KindReference:
			sites = append(sites, site{name: ins.Name, offset: len(out)})
			out = append(out, 0, 0, 0, 0)
		case emit.KindOp:
			out = append(out, byte(ins.Op))
		case emit.KindData:
			out = append(out, ins.Data...)
		case emit.KindComment:
			// no byte footprint
		default:
			return nil, fmt.Errorf("asm: unknown instruction kind %d", ins.Kind)
		}
	}

	for _, s := range sites {
		addr, ok := labels[s.name]
		if !ok {
			return nil, fmt.Errorf("asm: reference to undefined label %q", s.name)
		}
		encoded := code.EncodeAddr(uint32(addr))
		copy(out[s.offset:s.offset+4], encoded)
	}

	return code.Instructions(out), nil
}
