package main

import "github.com/kamusis/brewq/cmd"

func main() {
	cmd.Execute()
}
