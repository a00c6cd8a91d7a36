package main

import "github.com/Tiliavir/owl-time-keeper/cmd"

func main() {
	cmd.Execute()
}
