// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command substratectl is a development CLI for applications built on
// package core: it dumps the codegen type descriptor a foreign-binding
// generator would consume, and validates that a capability catalogue
// descriptor contains the variant tags the wire protocol expects.
//
// It is not part of the Core: like internal/refshell, it lives entirely
// on the Shell side of the boundary spec.md §1 draws, so it is free to use
// cobra's command tree and a TOML config file the way the Core itself
// never does.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "substratectl",
		Short: "Development CLI for substrate core applications",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a substratectl.toml config file (optional)")

	root.AddCommand(descriptorCmd(), validateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
