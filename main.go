package main

import "github.com/archform/cellcomplex/cmd"

func main() {
	cmd.Execute()
}
