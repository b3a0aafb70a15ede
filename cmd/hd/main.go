// ABOUTME: Entrypoint for the hd CLI tool.
// ABOUTME: Delegates to Execute() from the internal/hd package.
package main

import (
	"github.com/twilwa/hd/internal/hd"
)

func main() {
	hd.Execute()
}
