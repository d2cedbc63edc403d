package bytecode

import (
	"github.com/hantei-go/hantei/internal/ast"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// funcBuilder accumulates one instruction list — the main program or a
// single subroutine — and owns the register allocator for that list alone,
// since a subroutine's registers are a frame of their own, not shared with
// its caller's.
type funcBuilder struct {
	ops   []Instruction
	alloc *RegisterAllocator
}

func newFuncBuilder() *funcBuilder {
	return &funcBuilder{alloc: NewRegisterAllocator()}
}

func (fb *funcBuilder) emit(instr Instruction) int {
	fb.ops = append(fb.ops, instr)
	return len(fb.ops) - 1
}

// Compiler lowers one quality's optimized expression tree (plus its CSE
// definitions table) into a Program, compiling each distinct Reference id
// into its own subroutine exactly once.
type Compiler struct {
	defs          map[uint64]*ast.Expression
	subroutines   map[uint64][]Instruction
	compilingSubs map[uint64]bool
}

func NewCompiler() *Compiler {
	return &Compiler{
		subroutines:   make(map[uint64][]Instruction),
		compilingSubs: make(map[uint64]bool),
	}
}

// CompileQuality compiles root into a Program. defs backs any Reference
// node root or its subroutines contain.
func (c *Compiler) CompileQuality(root *ast.Expression, defs map[uint64]*ast.Expression) (*Program, error) {
	c.defs = defs

	main := newFuncBuilder()
	resultReg, err := c.compileRecursive(main, root, map[Register]bool{})
	if err != nil {
		return nil, err
	}
	// resultReg is never 0: the allocator reserves register 0 as the
	// call-result mailbox and never hands it out as an ordinary operand.
	main.emit(Instruction{Op: OpMove, Dst: 0, Src1: resultReg})
	main.emit(Instruction{Op: OpHalt})

	return &Program{Main: main.ops, Subroutines: c.subroutines}, nil
}

func withLive(liveAfter map[Register]bool, r Register) map[Register]bool {
	next := make(map[Register]bool, len(liveAfter)+1)
	for k, v := range liveAfter {
		next[k] = v
	}
	next[r] = true
	return next
}

// compileRecursive emits expr into fb and returns the register holding its
// result. liveAfter names every register that must still hold a valid value
// once this subtree finishes, so binary/unary emission can decide which
// operand register is safe to reuse as the destination.
func (c *Compiler) compileRecursive(fb *funcBuilder, expr *ast.Expression, liveAfter map[Register]bool) (Register, error) {
	switch expr.Kind {
	case ast.LiteralExpr:
		dst, err := fb.alloc.Alloc()
		if err != nil {
			return 0, err
		}
		fb.emit(Instruction{Op: OpLoadLiteral, Dst: dst, Literal: expr.Literal})
		return dst, nil

	case ast.InputExpr:
		dst, err := fb.alloc.Alloc()
		if err != nil {
			return 0, err
		}
		if expr.Input.FromDynamic {
			fb.emit(Instruction{Op: OpLoadDynamic, Dst: dst, DynamicID: expr.Input.ID})
		} else {
			fb.emit(Instruction{Op: OpLoadStatic, Dst: dst, StaticID: expr.Input.ID})
		}
		return dst, nil

	case ast.ReferenceExpr:
		return c.compileCall(fb, expr.RefID)

	case ast.Abs:
		return c.compileUnary(fb, OpAbs, expr.Left, liveAfter)
	case ast.Not:
		return c.compileUnary(fb, OpNot, expr.Left, liveAfter)

	case ast.And:
		return c.compileShortCircuit(fb, OpJumpIfFalse, expr.Left, expr.Right, liveAfter)
	case ast.Or:
		return c.compileShortCircuit(fb, OpJumpIfTrue, expr.Left, expr.Right, liveAfter)

	default:
		return c.compileBinaryFallback(fb, binaryOp(expr.Kind), expr.Left, expr.Right, liveAfter)
	}
}

func binaryOp(kind ast.Kind) Op {
	switch kind {
	case ast.Sum:
		return OpAdd
	case ast.Subtract:
		return OpSub
	case ast.Multiply:
		return OpMul
	case ast.Divide:
		return OpDiv
	case ast.Xor:
		return OpXor
	case ast.Equal:
		return OpEqual
	case ast.NotEqual:
		return OpNotEqual
	case ast.GreaterThan:
		return OpGreaterThan
	case ast.GreaterThanOrEqual:
		return OpGreaterThanOrEqual
	case ast.SmallerThan:
		return OpSmallerThan
	case ast.SmallerThanOrEqual:
		return OpSmallerThanOrEqual
	default:
		return OpHalt // unreachable: every Kind is handled in compileRecursive's switch
	}
}

// compileUnary reuses the child's register as the destination when it is
// not needed past this subtree, avoiding an allocation on the common path.
func (c *Compiler) compileUnary(fb *funcBuilder, op Op, operand *ast.Expression, liveAfter map[Register]bool) (Register, error) {
	childReg, err := c.compileRecursive(fb, operand, liveAfter)
	if err != nil {
		return 0, err
	}
	dst := childReg
	if liveAfter[childReg] {
		dst, err = fb.alloc.Alloc()
		if err != nil {
			return 0, err
		}
	}
	fb.emit(Instruction{Op: op, Dst: dst, Src1: childReg})
	return dst, nil
}

// compileBinaryFallback handles every binary operator except And/Or (which
// need short-circuit jumps instead of unconditionally evaluating both
// sides). Destination register selection prefers reusing the left operand,
// then the right, freeing whichever side is not reused.
func (c *Compiler) compileBinaryFallback(fb *funcBuilder, op Op, leftExpr, rightExpr *ast.Expression, liveAfter map[Register]bool) (Register, error) {
	left, err := c.compileRecursive(fb, leftExpr, liveAfter)
	if err != nil {
		return 0, err
	}
	right, err := c.compileRecursive(fb, rightExpr, withLive(liveAfter, left))
	if err != nil {
		return 0, err
	}

	var dst Register
	switch {
	case !liveAfter[left]:
		dst = left
		if right != left {
			fb.alloc.Free(right)
		}
	case !liveAfter[right]:
		dst = right
		if left != right {
			fb.alloc.Free(left)
		}
	default:
		dst, err = fb.alloc.Alloc()
		if err != nil {
			return 0, err
		}
		fb.alloc.Free(left)
		fb.alloc.Free(right)
	}

	fb.emit(Instruction{Op: op, Dst: dst, Src1: left, Src2: right})
	return dst, nil
}

// compileShortCircuit lowers And (jumpOp=OpJumpIfFalse) and Or
// (jumpOp=OpJumpIfTrue): the left side's result register is reused as the
// accumulator, a placeholder jump skips the right side when the left
// already decided the outcome, and the jump's target is patched once the
// right side's code has been emitted.
func (c *Compiler) compileShortCircuit(fb *funcBuilder, jumpOp Op, leftExpr, rightExpr *ast.Expression, liveAfter map[Register]bool) (Register, error) {
	resultReg, err := c.compileRecursive(fb, leftExpr, liveAfter)
	if err != nil {
		return 0, err
	}

	jumpIdx := fb.emit(Instruction{Op: jumpOp, Src1: resultReg, Addr: 0})

	rightReg, err := c.compileRecursive(fb, rightExpr, withLive(liveAfter, resultReg))
	if err != nil {
		return 0, err
	}
	fb.emit(Instruction{Op: OpMove, Dst: resultReg, Src1: rightReg})
	if rightReg != resultReg && !liveAfter[rightReg] {
		fb.alloc.Free(rightReg)
	}

	fb.ops[jumpIdx].Addr = len(fb.ops)
	return resultReg, nil
}

// compileCall compiles the subroutine for refID the first time it is seen
// (guarded by compilingSubs) and, at every call site, emits a Call followed
// by a Move pulling the R0 calling-convention result into a fresh register.
func (c *Compiler) compileCall(fb *funcBuilder, refID uint64) (Register, error) {
	if !c.compilingSubs[refID] {
		c.compilingSubs[refID] = true
		def, ok := c.defs[refID]
		if !ok {
			return 0, flowerr.NewInvalidLogic("dangling reference during bytecode compilation")
		}
		sub := newFuncBuilder()
		subResult, err := c.compileRecursive(sub, def, map[Register]bool{})
		if err != nil {
			return 0, err
		}
		// subResult is never 0, for the same reason as CompileQuality's
		// resultReg: register 0 is reserved, never allocated as an operand.
		sub.emit(Instruction{Op: OpMove, Dst: 0, Src1: subResult})
		sub.emit(Instruction{Op: OpReturn})
		c.subroutines[refID] = sub.ops
	}

	dst, err := fb.alloc.Alloc()
	if err != nil {
		return 0, err
	}
	fb.emit(Instruction{Op: OpCall, SubroutineID: refID})
	fb.emit(Instruction{Op: OpMove, Dst: dst, Src1: 0})
	return dst, nil
}
