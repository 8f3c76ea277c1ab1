package main

import "github.com/rlstats/go-rl-metrics/cmd"

func main() {
	cmd.Execute()
}
