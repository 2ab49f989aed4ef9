package main

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zeta1999/haybale/internal/executor"
	"github.com/zeta1999/haybale/internal/ir"
)

var Verbose bool

var exploreCommand = &cobra.Command{
	Use:   "explore",
	Short: "symbolically explore every path of the demo function",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		if err := exploreExec(); err != nil {
			log.Errorf("explore: %v", err)
		}
	},
}

func init() {
	exploreCommand.Flags().BoolVar(&Verbose, "verbose", false, "debug logging")
}

func exploreExec() error {
	if Verbose {
		log.SetLevel(log.DebugLevel)
	}
	yices2.Init()
	defer yices2.Exit()

	fn := demoFunction()
	log.Infof("exploring %s", fn)

	paths, err := executor.New().Execute(fn)
	if err != nil {
		return err
	}
	for i, path := range paths {
		fmt.Printf("path %d:", i)
		for _, bb := range path.Blocks {
			fmt.Printf(" %s", bb)
		}
		fmt.Println()
		for name, val := range path.Args {
			fmt.Printf("  %s = %d\n", name, val)
		}
		if path.Ret != nil {
			fmt.Printf("  ret %d\n", *path.Ret)
		}
	}
	log.Infof("%d feasible paths", len(paths))
	return nil
}

// demoFunction builds:
//
//	define i64 @demo(i64 %x) {
//	entry:
//	  %y = add i64 %x, 5
//	  %big = icmp sgt i64 %y, 100
//	  br i1 %big, label %overflowy, label %small
//	overflowy:
//	  %huge = icmp sgt i64 %x, 1000
//	  br i1 %huge, label %giant, label %merged
//	giant:
//	  ret i64 1
//	small:
//	  br label %merged
//	merged:
//	  %z = mul i64 %y, 2
//	  ret i64 %z
//	}
func demoFunction() *ir.Function {
	var (
		x    = ir.NewName("x")
		y    = ir.NewName("y")
		z    = ir.NewName("z")
		big  = ir.NewName("big")
		huge = ir.NewName("huge")

		i64  = ir.IntType(64)
		xOp  = ir.NewLocalOperand(x, i64)
		yOp  = ir.NewLocalOperand(y, i64)
		zOp  = ir.NewLocalOperand(z, i64)
		one  = ir.NewConstOperand(1, 64)
		five = ir.NewConstOperand(5, 64)
		two  = ir.NewConstOperand(2, 64)
	)
	return &ir.Function{
		Name:    "demo",
		Params:  []ir.Param{{Name: x, Ty: i64}},
		RetType: i64,
		Blocks: []*ir.BasicBlock{
			{
				Name: ir.NewName("entry"),
				Instrs: []ir.Instruction{
					&ir.BinOp{Op: ir.Add, Dest: y, Ty: i64, X: xOp, Y: five},
					&ir.ICmp{Dest: big, Pred: ir.PredSgt, X: yOp, Y: ir.NewConstOperand(100, 64)},
					&ir.CondBr{
						Cond:  ir.NewLocalOperand(big, ir.BoolType()),
						True:  ir.NewName("overflowy"),
						False: ir.NewName("small"),
					},
				},
			},
			{
				Name: ir.NewName("overflowy"),
				Instrs: []ir.Instruction{
					&ir.ICmp{Dest: huge, Pred: ir.PredSgt, X: xOp, Y: ir.NewConstOperand(1000, 64)},
					&ir.CondBr{
						Cond:  ir.NewLocalOperand(huge, ir.BoolType()),
						True:  ir.NewName("giant"),
						False: ir.NewName("merged"),
					},
				},
			},
			{
				Name: ir.NewName("giant"),
				Instrs: []ir.Instruction{
					&ir.Ret{Value: &one},
				},
			},
			{
				Name: ir.NewName("small"),
				Instrs: []ir.Instruction{
					&ir.Br{Dest: ir.NewName("merged")},
				},
			},
			{
				Name: ir.NewName("merged"),
				Instrs: []ir.Instruction{
					&ir.BinOp{Op: ir.Mul, Dest: z, Ty: i64, X: yOp, Y: two},
					&ir.Ret{Value: &zOp},
				},
			},
		},
	}
}
