// The main package for the blogsearch executable.
package main

import (
	"github.com/d5meta/blogsearch/cmd"
)

func main() {
	cmd.Execute()
}
