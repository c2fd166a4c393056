package main

import "esl-middleware/cmd"

func main() {
	cmd.Execute()
}
