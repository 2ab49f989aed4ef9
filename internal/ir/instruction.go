package ir

import "fmt"

// Instruction is any instruction in a basic block. The last instruction
// of a block must be a terminator (Br, CondBr or Ret).
type Instruction interface {
	fmt.Stringer
}

// HasResult is implemented by instructions that define a local value.
type HasResult interface {
	Result() Name
	ResultType() Type
}

type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	And
	Or
	Xor
	Shl
	LShr
	AShr
)

var binOpNames = map[BinOpKind]string{
	Add:  "add",
	Sub:  "sub",
	Mul:  "mul",
	And:  "and",
	Or:   "or",
	Xor:  "xor",
	Shl:  "shl",
	LShr: "lshr",
	AShr: "ashr",
}

func (k BinOpKind) String() string {
	return binOpNames[k]
}

// BinOp is a two-operand arithmetic or bitwise instruction.
type BinOp struct {
	Op   BinOpKind
	Dest Name
	Ty   Type
	X, Y Operand
}

func (i *BinOp) Result() Name     { return i.Dest }
func (i *BinOp) ResultType() Type { return i.Ty }
func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dest, i.Op, i.X, i.Y)
}

type Predicate int

const (
	PredEq Predicate = iota
	PredNe
	PredSlt
	PredSgt
	PredSle
	PredSge
	PredUlt
	PredUgt
	PredUle
	PredUge
)

var predicateNames = map[Predicate]string{
	PredEq:  "eq",
	PredNe:  "ne",
	PredSlt: "slt",
	PredSgt: "sgt",
	PredSle: "sle",
	PredSge: "sge",
	PredUlt: "ult",
	PredUgt: "ugt",
	PredUle: "ule",
	PredUge: "uge",
}

func (p Predicate) String() string {
	return predicateNames[p]
}

// ICmp compares two integer operands; its result is i1.
type ICmp struct {
	Dest Name
	Pred Predicate
	X, Y Operand
}

func (i *ICmp) Result() Name     { return i.Dest }
func (i *ICmp) ResultType() Type { return BoolType() }
func (i *ICmp) String() string {
	return fmt.Sprintf("%s = icmp %s %s, %s", i.Dest, i.Pred, i.X, i.Y)
}

// Alloca allocates Bits bits of fresh memory; its result is the base
// address as a 64-bit pointer.
type Alloca struct {
	Dest Name
	Bits uint32
}

func (i *Alloca) Result() Name     { return i.Dest }
func (i *Alloca) ResultType() Type { return PointerType() }
func (i *Alloca) String() string {
	return fmt.Sprintf("%s = alloca i%d", i.Dest, i.Bits)
}

// Load reads Ty.Bits() bits of memory at Addr.
type Load struct {
	Dest Name
	Ty   Type
	Addr Operand
}

func (i *Load) Result() Name     { return i.Dest }
func (i *Load) ResultType() Type { return i.Ty }
func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s", i.Dest, i.Ty, i.Addr)
}

// Store writes Value to memory at Addr.
type Store struct {
	Addr  Operand
	Value Operand
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, %s", i.Value, i.Addr)
}

// Br is an unconditional branch terminator.
type Br struct {
	Dest Name
}

func (i *Br) String() string {
	return fmt.Sprintf("br label %s", i.Dest)
}

// CondBr branches to True or False depending on Cond, which must be i1.
type CondBr struct {
	Cond  Operand
	True  Name
	False Name
}

func (i *CondBr) String() string {
	return fmt.Sprintf("br %s, label %s, label %s", i.Cond, i.True, i.False)
}

// Ret terminates the function; Value is nil for void returns.
type Ret struct {
	Value *Operand
}

func (i *Ret) String() string {
	if i.Value == nil {
		return "ret void"
	}
	return fmt.Sprintf("ret %s", *i.Value)
}
