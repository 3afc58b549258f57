// ./main.go
package main

import (
	"github.com/eventops/fienta-codectl/cmd"
)

// main is the entry point for the fienta-codectl application.
func main() {
	cmd.Execute()
}
