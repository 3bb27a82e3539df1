// SPDX-License-Identifier: MPL-2.0

package main

import cmd "varup/cmd/varup"

func main() {
	cmd.Execute()
}
