// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/syncer/cmd/syncer"

// execute is overridable in tests.
var execute = syncer.Execute

func main() {
	execute()
}
