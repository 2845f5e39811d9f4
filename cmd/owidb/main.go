package main

import (
	"os"

	"github.com/spf13/afero"

	"github.com/owi-lab/go-metadatabase/internal/pkg/cli"
	"github.com/owi-lab/go-metadatabase/internal/pkg/env"
)

func main() {
	// Run command
	cmd := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr, env.FromOs(), afero.NewOsFs())
	os.Exit(cmd.Execute())
}
