// Command framing is the CLI entry point for the framing runtime.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/felixgeelhaar/framing-go/interfaces/cli"
)

func main() {
	app := cli.New()
	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
