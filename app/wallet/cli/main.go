// This program is a command line wallet for a powchain node.
package main

import "github.com/ardanlabs/powchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
