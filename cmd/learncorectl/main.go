// Command learncorectl is the CLI entrypoint for the content authoring and
// publishing engine, grounded on cmd/tangent/main.go's init/run split (minus
// the HTTP server: learncorectl is a one-shot CLI, not a long-running
// service).
package main

import (
	"github.com/tansive/learncore/internal/cli"
	"github.com/tansive/learncore/internal/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
