package main

import "repolar/cmd"

func main() {
	cmd.Execute()
}
