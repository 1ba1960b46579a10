package main

import "github.com/dgallion1/tinywiki/internal/cli"

func main() {
	cli.Execute()
}
