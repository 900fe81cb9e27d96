package main

import "github.com/Yates-Labs/anar/cmd"

func main() {
	cmd.Execute()
}
