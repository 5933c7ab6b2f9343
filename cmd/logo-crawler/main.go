package main

import cmd "github.com/rohmanhakim/logo-crawler/internal/cli"

func main() {
	cmd.Execute()
}
