package main

import "github.com/papapumpkin/navstrip/cmd"

func main() {
	cmd.Execute()
}
