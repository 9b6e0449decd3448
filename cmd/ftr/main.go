// Command ftr decodes FTR transaction recordings.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ftr/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
