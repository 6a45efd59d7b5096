// SPDX-License-Identifier: MIT

package main

import "github.com/sohamch/Onsager/cmd"

func main() {
	cmd.Execute()
}
