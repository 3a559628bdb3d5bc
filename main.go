package main

import "github.com/ctrlfund/ctrlfund/cmd"

func main() {
	cmd.Execute()
}
