package main

import "airchord/cmd"

func main() {
	cmd.Execute()
}
