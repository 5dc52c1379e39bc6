package main

import (
	"fmt"
	"os"

	"github.com/cloudops-dev/cloudops/pkg/cloudopsctl/cmd"
)

func main() {
	root := cmd.NewRootCommand(cmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
