package main

import "github.com/Norgate-AV/rustpack/cmd"

func main() {
	cmd.Execute()
}
