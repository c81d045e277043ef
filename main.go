package main

import "ctxsync/cmd"

func main() {
	cmd.Execute()
}
