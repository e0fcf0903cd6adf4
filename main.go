package main

import "github.com/KaramelBytes/roadstats-cli/cmd"

func main() {
	cmd.Execute()
}
