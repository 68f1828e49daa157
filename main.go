// The main package for the stocktracker executable.
package main

import "github.com/SatyamPundir/product-stock-tracker/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
