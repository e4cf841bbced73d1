package emit

import (
	"testing"

	"github.com/clscript/clscript/code"
)

func TestBufferLabelAndOp(t *testing.T) {
	b := New()
	b.Label("start")
	b.Op(code.Add)

	if len(b.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(b.Instructions))
	}
	if b.Instructions[0].Kind != KindLabel || b.Instructions[0].Name != "start" {
		t.Fatalf("instruction 0 = %+v, want label %q", b.Instructions[0], "start")
	}
	if b.Instructions[1].Kind != KindOp || b.Instructions[1].Op != code.Add {
		t.Fatalf("instruction 1 = %+v, want op %v", b.Instructions[1], code.Add)
	}
}

func TestBufferReferenceEmitsAddrThenPlaceholder(t *testing.T) {
	b := New()
	b.Reference("loop")

	if len(b.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(b.Instructions))
	}
	if b.Instructions[0].Kind != KindOp || b.Instructions[0].Op != code.Addr {
		t.Fatalf("instruction 0 = %+v, want ADDR op", b.Instructions[0])
	}
	if b.Instructions[1].Kind != KindReference || b.Instructions[1].Name != "loop" {
		t.Fatalf("instruction 1 = %+v, want reference %q", b.Instructions[1], "loop")
	}
}

func TestBufferNumber(t *testing.T) {
	b := New()
	b.Number(3.5)

	if len(b.Instructions) != 2 {
		t.Fatalf("got %d instructions, want 2", len(b.Instructions))
	}
	if b.Instructions[0].Op != code.Num {
		t.Fatalf("instruction 0 op = %v, want NUM", b.Instructions[0].Op)
	}
	want := code.EncodeNumber(3.5)
	if string(b.Instructions[1].Data) != string(want) {
		t.Fatalf("encoded number = %x, want %x", b.Instructions[1].Data, want)
	}
}

func TestBufferString(t *testing.T) {
	b := New()
	b.String("hi")

	if b.Instructions[0].Op != code.Str {
		t.Fatalf("instruction 0 op = %v, want STR", b.Instructions[0].Op)
	}
	want := code.EncodeString("hi")
	if string(b.Instructions[1].Data) != string(want) {
		t.Fatalf("encoded string = %x, want %x", b.Instructions[1].Data, want)
	}
}

func TestBufferComment(t *testing.T) {
	b := New()
	b.Comment("iteration %d", 3)

	if b.Instructions[0].Kind != KindComment {
		t.Fatalf("kind = %v, want KindComment", b.Instructions[0].Kind)
	}
	if b.Instructions[0].Comment != "iteration 3" {
		t.Fatalf("comment = %q, want %q", b.Instructions[0].Comment, "iteration 3")
	}
}
