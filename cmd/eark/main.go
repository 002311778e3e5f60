package main

import "github.com/srerickson/eark/cmd/eark/cmd"

func main() {
	cmd.Execute()
}
