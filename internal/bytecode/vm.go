package bytecode

import (
	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

const registerCount = maxRegister + 1

// frame is one call's register file plus its program counter within its
// own instruction list; Call pushes a fresh frame, Return pops one and
// copies its R0 into the resuming caller's R0. Register 0 is never handed
// out by RegisterAllocator.Alloc, so OpReturn overwriting the caller's
// regs[0] never clobbers a live operand.
type frame struct {
	ops  []Instruction
	pc   int
	regs [registerCount]ast.Value
}

// VM executes a compiled Program against one evaluation call's runtime
// data. A VM is single-use and not safe for concurrent Run calls — callers
// evaluating several dynamic-instance bindings create one VM per binding;
// the frames each Run executes in are borrowed from the pool in pool.go.
type VM struct {
	symbols *ast.SymbolTable
	static  dynamic.StaticData
	dyn     dynamic.Context
}

func NewVM(symbols *ast.SymbolTable, static dynamic.StaticData, dyn dynamic.Context) *VM {
	return &VM{symbols: symbols, static: static, dyn: dyn}
}

// Run executes prog.Main (and any subroutines it calls) to completion,
// returning the Halt-time value of R0.
func (vm *VM) Run(prog *Program) (ast.Value, error) {
	frames := []*frame{getFrame(prog.Main)}
	defer func() {
		for _, f := range frames {
			putFrame(f)
		}
	}()

	for {
		cur := frames[len(frames)-1]
		if cur.pc >= len(cur.ops) {
			return ast.Value{}, flowerr.NewUnhandledOpCode("instruction pointer ran past the end of the op list without Halt")
		}
		instr := cur.ops[cur.pc]
		cur.pc++

		switch instr.Op {
		case OpLoadLiteral:
			cur.regs[instr.Dst] = instr.Literal

		case OpLoadStatic:
			name := vm.symbols.StaticName(instr.StaticID)
			v, ok := vm.static[name]
			if !ok {
				return ast.Value{}, flowerr.NewInputNotFound(name)
			}
			cur.regs[instr.Dst] = ast.Number(v)

		case OpLoadDynamic:
			key := vm.symbols.DynamicKeyOf(instr.DynamicID)
			instance, ok := vm.dyn[key.Event]
			if !ok {
				return ast.Value{}, flowerr.NewInputNotFound(key.Event + "." + key.Field)
			}
			v, ok := instance[key.Field]
			if !ok {
				return ast.Value{}, flowerr.NewInputNotFound(key.Event + "." + key.Field)
			}
			cur.regs[instr.Dst] = ast.Number(v)

		case OpMove:
			cur.regs[instr.Dst] = cur.regs[instr.Src1]

		case OpAdd, OpSub, OpMul, OpDiv:
			l, r := cur.regs[instr.Src1], cur.regs[instr.Src2]
			if !l.IsNumber() || !r.IsNumber() {
				return ast.Value{}, flowerr.NewTypeMismatch(instr.Op.String(), "Number", vmMismatchKind(l, r))
			}
			cur.regs[instr.Dst] = arithmetic(instr.Op, l.Num, r.Num)

		case OpXor:
			l, r := cur.regs[instr.Src1], cur.regs[instr.Src2]
			if !l.IsBool() || !r.IsBool() {
				return ast.Value{}, flowerr.NewTypeMismatch("Xor", "Bool", vmMismatchKind(l, r))
			}
			cur.regs[instr.Dst] = ast.Bool(l.B != r.B)

		case OpAbs:
			v := cur.regs[instr.Src1]
			if !v.IsNumber() {
				return ast.Value{}, flowerr.NewTypeMismatch("Abs", "Number", v.KindName())
			}
			n := v.Num
			if n < 0 {
				n = -n
			}
			cur.regs[instr.Dst] = ast.Number(n)

		case OpNot:
			v := cur.regs[instr.Src1]
			if !v.IsBool() {
				return ast.Value{}, flowerr.NewTypeMismatch("Not", "Bool", v.KindName())
			}
			cur.regs[instr.Dst] = ast.Bool(!v.B)

		case OpEqual:
			l, r := cur.regs[instr.Src1], cur.regs[instr.Src2]
			cur.regs[instr.Dst] = ast.Bool(l.Equal(r))

		case OpNotEqual:
			l, r := cur.regs[instr.Src1], cur.regs[instr.Src2]
			cur.regs[instr.Dst] = ast.Bool(!l.Equal(r))

		case OpGreaterThan, OpGreaterThanOrEqual, OpSmallerThan, OpSmallerThanOrEqual:
			l, r := cur.regs[instr.Src1], cur.regs[instr.Src2]
			if !l.IsNumber() || !r.IsNumber() {
				return ast.Value{}, flowerr.NewTypeMismatch(instr.Op.String(), "Number", vmMismatchKind(l, r))
			}
			cur.regs[instr.Dst] = ast.Bool(compare(instr.Op, l.Num, r.Num))

		case OpJump:
			cur.pc = instr.Addr

		case OpJumpIfFalse:
			v := cur.regs[instr.Src1]
			if !v.IsBool() {
				return ast.Value{}, flowerr.NewTypeMismatch("JumpIfFalse", "Bool", v.KindName())
			}
			if !v.B {
				cur.pc = instr.Addr
			}

		case OpJumpIfTrue:
			v := cur.regs[instr.Src1]
			if !v.IsBool() {
				return ast.Value{}, flowerr.NewTypeMismatch("JumpIfTrue", "Bool", v.KindName())
			}
			if v.B {
				cur.pc = instr.Addr
			}

		case OpCall:
			subOps, ok := prog.Subroutines[instr.SubroutineID]
			if !ok {
				return ast.Value{}, flowerr.NewUnhandledOpCode("call to an undefined subroutine id")
			}
			frames = append(frames, getFrame(subOps))

		case OpReturn:
			result := cur.regs[0]
			putFrame(cur)
			frames = frames[:len(frames)-1]
			if len(frames) == 0 {
				return result, nil
			}
			frames[len(frames)-1].regs[0] = result

		case OpHalt:
			return cur.regs[0], nil

		default:
			return ast.Value{}, flowerr.NewUnhandledOpCode("unrecognized opcode")
		}
	}
}

func arithmetic(op Op, l, r float64) ast.Value {
	switch op {
	case OpAdd:
		return ast.Number(l + r)
	case OpSub:
		return ast.Number(l - r)
	case OpMul:
		return ast.Number(l * r)
	default:
		return ast.Number(l / r)
	}
}

func compare(op Op, l, r float64) bool {
	switch op {
	case OpGreaterThan:
		return l > r
	case OpGreaterThanOrEqual:
		return l >= r
	case OpSmallerThan:
		return l < r
	default:
		return l <= r
	}
}

func vmMismatchKind(l, r ast.Value) string {
	if l.KindName() != "Number" && l.KindName() != "Bool" {
		return l.KindName()
	}
	if r.KindName() != l.KindName() {
		return r.KindName()
	}
	return l.KindName()
}
