package main

import (
	"os"
)

func main() {
	root := NewRootCmd(os.Stdout, newEnvFromConfig)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
