package main

import "github.com/valpere/cliptran/cmd"

func main() {
	cmd.Execute()
}
