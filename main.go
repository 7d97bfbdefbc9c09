package main

import "github.com/mkessler/ttr/cmd"

func main() {
	cmd.Execute()
}
