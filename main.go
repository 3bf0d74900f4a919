package main

import "github.com/notargets/vesselmap/cmd"

func main() {
	cmd.Execute()
}
