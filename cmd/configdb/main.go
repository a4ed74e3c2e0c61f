// Command configdb reads and writes namespaced configuration groups and serves them over HTTP.
package main

import (
	"os"
)

func main() {
	err := newRootCommand(os.Stdout, os.Stderr).Execute()
	if err != nil {
		os.Exit(1)
	}
}
