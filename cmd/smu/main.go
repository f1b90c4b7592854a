package main

import "github.com/OpenTraceLab/OpenTraceSMU/cmd/smu/cmd"

func main() {
	cmd.Execute()
}
