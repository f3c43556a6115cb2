package main

import "xiaoliu/internal/cli"

func main() {
	cli.Execute()
}
