// Command llmjson pulls JSON values out of language model output.
//
//	llmjson extract --schema person.json reply.txt
//	cat reply.txt | llmjson repair --pretty
//	llmjson schema person.yaml
//
// Flags can also be set through LLMJSON_* environment variables (for
// example LLMJSON_LOG_LEVEL=debug), a .env file in the working directory, or
// a config file passed with --config.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
