package main

import "landkit/cmd"

func main() {
	cmd.Execute()
}
