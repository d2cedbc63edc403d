package bytecode

import (
	"sync"

	"github.com/hantei-go/hantei/internal/ast"
)

// framePool recycles frame values across VM.Run calls: the dynamic
// evaluator's cross-product search invokes a fresh VM for every bound
// instance combination, and a quality with several dynamic event types can
// try dozens of bindings per call, so reusing the (fairly large, due to the
// fixed 256-register array) frame value instead of zeroing a new one each
// time keeps that hot path allocation-free.
var framePool = sync.Pool{
	New: func() any { return &frame{} },
}

// getFrame borrows a frame from the pool, pointed at ops and reset to
// instruction zero with a cleared register file.
func getFrame(ops []Instruction) *frame {
	f := framePool.Get().(*frame)
	f.ops = ops
	f.pc = 0
	for i := range f.regs {
		f.regs[i] = ast.Value{}
	}
	return f
}

// putFrame returns f to the pool. Callers must not use f afterward.
func putFrame(f *frame) {
	f.ops = nil
	framePool.Put(f)
}
