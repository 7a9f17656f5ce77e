// SPDX-License-Identifier: MPL-2.0

// Command mpycross compiles MicroPython sources with the bundled mpy-cross.
package main

import "github.com/invowk/mpycross/cmd/mpycross"

func main() {
	cmd.Execute()
}
