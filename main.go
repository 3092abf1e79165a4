package main

import "github.com/iksnae/tutor-assistant/cmd"

func main() {
	cmd.Execute()
}
