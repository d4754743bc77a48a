package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/llmjson/core/repair"
)

func newRepairCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [FILE...]",
		Short: "Repair an almost-JSON value without a schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepair(cmd, args)
		},
	}
	cmd.Flags().Bool("pretty", false, "indent the output")
	cmd.Flags().Bool("color", false, "colorize the output")
	cmd.Flags().Bool("html", false, "convert HTML inputs to markdown first")
	return cmd
}

func (a *app) runRepair(cmd *cobra.Command, args []string) error {
	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if a.v.GetBool("html") {
		if err := htmlToMarkdown(inputs); err != nil {
			return err
		}
	}

	render := renderOptions{pretty: a.v.GetBool("pretty"), color: a.v.GetBool("color")}
	failed := 0
	for _, in := range inputs {
		v, err := repair.RepairContext(cmd.Context(), string(in.data))
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", in.name, err)
			continue
		}
		if err := writeValue(cmd.OutOrStdout(), v, render); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be repaired", failed, len(inputs))
	}
	return nil
}
