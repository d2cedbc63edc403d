package bytecode

import flowerr "github.com/hantei-go/hantei/pkg/errors"

// RegisterAllocator is a monotonic counter with a free-list: Alloc reuses a
// freed register before minting a new one, and Free pushes a register back
// for reuse, guarded against double-freeing the same register twice.
//
// Register 0 is never handed out by Alloc: it is reserved as the VM's
// cross-frame call-result mailbox (OpCall/OpReturn move a subroutine's
// result through the caller's and callee's regs[0]). If Alloc could mint
// register 0 for an ordinary operand, a CSE Reference compiling to a Call
// while that operand was still live would have its value clobbered the
// moment the callee returns, since OpReturn overwrites the caller's regs[0]
// unconditionally.
type RegisterAllocator struct {
	next Register
	free []Register
	used map[Register]bool
}

func NewRegisterAllocator() *RegisterAllocator {
	return &RegisterAllocator{next: 1, used: make(map[Register]bool)}
}

func (a *RegisterAllocator) Alloc() (Register, error) {
	if n := len(a.free); n > 0 {
		r := a.free[n-1]
		a.free = a.free[:n-1]
		a.used[r] = true
		return r, nil
	}
	// next wraps to 0 once register maxRegister has been minted; since 0 is
	// never a fresh register, a zero counter means every register is taken.
	if a.next == 0 {
		return 0, flowerr.NewResourceLimitExceeded("register allocator exhausted: program needs more than 255 live registers")
	}
	r := a.next
	a.next++
	a.used[r] = true
	return r, nil
}

func (a *RegisterAllocator) Free(r Register) {
	if !a.used[r] {
		return
	}
	a.used[r] = false
	a.free = append(a.free, r)
}
