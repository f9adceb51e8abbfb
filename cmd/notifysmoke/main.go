package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dwsmith1983/notifysmoke/internal/commands"
)

var version = "dev"

func main() {
	root := commands.NewRootCmd(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
