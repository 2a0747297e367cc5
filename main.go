package main

import "github.com/okibe/mangasrc/cmd"

func main() {
	cmd.Execute()
}
