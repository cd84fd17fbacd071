package main

import (
	"os"

	"github.com/funvibe/funcall/cmd/funcall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
