// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"code.hybscloud.com/substrate/codegen"
)

func descriptorCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Dump the built-in capability catalogue's codegen descriptor",
		Long: `Dump prints the type descriptor for the framework's own capability
catalogue (Render, Http, KV, Sse, Platform, Time, Delay) as YAML. An
application embedding substrate would extend codegen.BuiltinCatalogue()
with its own Event/ViewModel types before emitting; this command only
covers the built-in half of the graph, for inspecting the wire protocol's
variant numbering in isolation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			d := codegen.BuiltinCatalogue().Build()

			var out []byte
			switch cfg.Descriptor.Format {
			case "yaml", "":
				out, err = codegen.Marshal(d)
			default:
				return fmt.Errorf("substratectl: unsupported descriptor format %q", cfg.Descriptor.Format)
			}
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the descriptor to a file instead of stdout")
	return cmd
}
