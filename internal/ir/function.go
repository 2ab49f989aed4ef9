package ir

import "fmt"

// Param is a typed function parameter.
type Param struct {
	Name Name
	Ty   Type
}

// BasicBlock is a named, straight-line sequence of instructions ending
// in a terminator.
type BasicBlock struct {
	Name   Name
	Instrs []Instruction
}

// Terminator returns the block's final instruction, or nil for an
// empty (malformed) block.
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Function is a single-assignment function body. Blocks[0] is the
// entry block.
type Function struct {
	Name    string
	Params  []Param
	RetType Type
	Blocks  []*BasicBlock
}

// Entry returns the function's entry block.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Block looks up a basic block by name.
func (f *Function) Block(name Name) (*BasicBlock, error) {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no block %s in function %s", name, f.Name)
}

func (f *Function) String() string {
	return fmt.Sprintf("%s(%d params, %d blocks)", f.Name, len(f.Params), len(f.Blocks))
}
