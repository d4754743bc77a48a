package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [FILE]",
		Short: "Compile a schema description and print the resulting tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := a.v.GetString("schema")
			if len(args) == 1 {
				file = args[0]
			}
			s, err := loadSchema(file, a.v.GetString("schema-path"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), s.String())
			return err
		},
	}
	addSchemaFlags(cmd)
	return cmd
}
