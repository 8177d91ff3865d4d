package main

import "github.com/framecheck/framecheck/cmd"

func main() {
	cmd.Execute()
}
