package main

import "github.com/mcoot/wordlegame-go/internal/cli"

func main() {
	cli.Execute()
}
