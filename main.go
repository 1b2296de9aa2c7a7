package main

import "github.com/ngld/buildorch/cmd"

func main() {
	cmd.Execute()
}
