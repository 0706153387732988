package main

import "github.com/sitehatch/sitehatch-backend/cmd"

func main() {
	cmd.Init()
}
