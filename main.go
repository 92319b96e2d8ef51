package main

import "pawmatch-backend/cmd"

func main() {
	cmd.Run()
}
