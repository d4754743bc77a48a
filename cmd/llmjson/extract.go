package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/llmjson/core/extract"
	"github.com/leofalp/llmjson/core/schema"
	"github.com/leofalp/llmjson/internal/jsonschema"
)

func newExtractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract --schema FILE [FILE...]",
		Short: "Extract the first value matching a schema from each input",
		Long: `Extract scans every input (stdin when no file is given) for the first
value that parses under the schema and prints it as one JSON document per
line, in input order. Inputs without a match are reported on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args)
		},
	}

	flags := cmd.Flags()
	addSchemaFlags(cmd)
	flags.Bool("pretty", false, "indent the output")
	flags.Bool("color", false, "colorize the output")
	flags.Bool("html", false, "convert HTML inputs to markdown before scanning")
	flags.Bool("strict-utf8", false, "reject strings that are not valid UTF-8")
	flags.Int("concurrency", 0, "inputs processed in parallel (0 = GOMAXPROCS)")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(a.v.GetString("schema"), a.v.GetString("schema-path"))
	if err != nil {
		return err
	}

	opts := []extract.Option{extract.WithObserver(a.observer)}
	if a.v.GetBool("strict-utf8") {
		opts = append(opts, extract.WithStrictUTF8())
	}
	ex, err := extract.New(s, opts...)
	if err != nil {
		return err
	}

	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if a.v.GetBool("html") {
		if err := htmlToMarkdown(inputs); err != nil {
			return err
		}
	}

	texts := make([][]byte, len(inputs))
	for i, in := range inputs {
		texts[i] = in.data
	}
	results, err := ex.ExtractBatch(cmd.Context(), texts, a.v.GetInt("concurrency"))
	if err != nil {
		return err
	}

	render := renderOptions{pretty: a.v.GetBool("pretty"), color: a.v.GetBool("color")}
	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", inputs[i].name, r.Err)
			continue
		}
		if err := writeValue(cmd.OutOrStdout(), r.Value, render); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs had no match", failed, len(results))
	}
	return nil
}

var errNoSchema = errors.New("no schema given, use --schema or LLMJSON_SCHEMA")

func addSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("schema", "s", "", "schema description file (.json, .yaml, .yml)")
	cmd.Flags().String("schema-path", "", "gjson path of the schema inside a larger JSON file")
}

func loadSchema(file, path string) (*schema.Schema, error) {
	if file == "" {
		return nil, errNoSchema
	}
	desc, err := jsonschema.Load(file, path)
	if err != nil {
		return nil, err
	}
	s, err := schema.Compile(desc)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", file, err)
	}
	return s, nil
}
