package main

import (
	"fmt"
	"os"

	"garden/pkg/cli"
)

func main() {
	if err := cli.Execute(cli.New()); err != nil {
		fmt.Fprintln(os.Stderr, "gardenctl:", err)
		os.Exit(1)
	}
}
