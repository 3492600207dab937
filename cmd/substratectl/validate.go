// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"code.hybscloud.com/substrate/codegen"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the built-in capability catalogue's descriptor",
		Long: `Validate checks the descriptor codegen.BuiltinCatalogue() produces
against the invariants a foreign binding generator relies on: every
Effect variant has a unique tag, tags are contiguous starting at zero (so
a generated switch/match can index by tag instead of searching), and
every Ref payload a variant names resolves to a struct actually present
in the descriptor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := codegen.BuiltinCatalogue().Build()
			errs := validateDescriptor(d)
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, e := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			return fmt.Errorf("substratectl: %d validation error(s)", len(errs))
		},
	}
	return cmd
}

func validateDescriptor(d codegen.Descriptor) []error {
	var errs []error

	known := make(map[string]bool, len(d.Structs))
	for _, s := range d.Structs {
		known[s.Name] = true
	}

	for _, e := range d.Enums {
		seenTags := make(map[uint32]string, len(e.Variants))
		maxTag := uint32(0)
		for _, v := range e.Variants {
			if other, dup := seenTags[v.Tag]; dup {
				errs = append(errs, fmt.Errorf("%s: variants %q and %q share tag %d", e.Name, other, v.Name, v.Tag))
			}
			seenTags[v.Tag] = v.Name
			if v.Tag > maxTag {
				maxTag = v.Tag
			}
			if v.Payload.Kind == codegen.KindRef && !known[v.Payload.Name] {
				errs = append(errs, fmt.Errorf("%s.%s: payload refers to unknown struct %q", e.Name, v.Name, v.Payload.Name))
			}
		}
		for tag := uint32(0); tag <= maxTag; tag++ {
			if _, ok := seenTags[tag]; !ok {
				errs = append(errs, fmt.Errorf("%s: tag %d has no variant (tags must be contiguous from 0)", e.Name, tag))
			}
		}
	}
	return errs
}
