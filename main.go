package main

import "github.com/shaharia-lab/mailroom/cmd"

func main() {
	cmd.Execute()
}
