package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/tidwall/pretty"

	"github.com/leofalp/llmjson/core/value"
)

// input is one text to process, named for error messages.
type input struct {
	name string
	data []byte
}

// readInputs reads every named file, or stdin when there are none. "-" also
// names stdin.
func readInputs(args []string, stdin io.Reader) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		var (
			data []byte
			err  error
		)
		if name == "-" {
			data, err = io.ReadAll(stdin)
			name = "<stdin>"
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, input{name: name, data: data})
	}
	return inputs, nil
}

// htmlToMarkdown rewrites HTML inputs as markdown so the scanner sees the
// text a model would have produced rather than tags and entities.
func htmlToMarkdown(inputs []input) error {
	for i, in := range inputs {
		md, err := htmltomarkdown.ConvertString(string(in.data))
		if err != nil {
			return fmt.Errorf("convert %s: %w", in.name, err)
		}
		inputs[i].data = []byte(md)
	}
	return nil
}

type renderOptions struct {
	pretty bool
	color  bool
}

// writeValue writes v as one JSON document followed by a newline.
func writeValue(w io.Writer, v value.Value, opts renderOptions) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if opts.pretty {
		data = pretty.Pretty(data)
	}
	if opts.color {
		data = pretty.Color(data, nil)
	}
	data = append(bytes.TrimRight(data, "\n"), '\n')
	_, err = w.Write(data)
	return err
}
