package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	BuildBranch  string
	BuildVersion string
	BuildTime    string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "show version",
	Long:  ``,
	Run: func(*cobra.Command, []string) {
		fmt.Printf("%-16s %s\n", "BuildBranch", BuildBranch)
		fmt.Printf("%-16s %s\n", "BuildVersion", BuildVersion)
		fmt.Printf("%-16s %s\n", "BuildTime", BuildTime)
	},
}
