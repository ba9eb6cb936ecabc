package main

import "github.com/rnwolfe/streak/cmd"

func main() {
	cmd.Execute()
}
