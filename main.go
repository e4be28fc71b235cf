package main

import "github.com/pipedeck/pipedeck/cmd"

func main() {
	cmd.Execute()
}
