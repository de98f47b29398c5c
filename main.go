package main

import "github.com/KaramelBytes/cord19-explorer/cmd"

func main() {
	cmd.Execute()
}
