package main

import "github.com/notargets/gohp/cmd"

func main() {
	cmd.Execute()
}
