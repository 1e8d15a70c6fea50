package main

import "github.com/ZacxDev/agency-prerender/cmd"

func main() {
	cmd.Execute()
}
