package main

import "github.com/Alijeyrad/dentaldesk/cmd"

func main() {
	cmd.Execute()
}
