package main

import "github.com/coachbook/coachbook_backend/cmd"

func main() {
	cmd.Execute()
}
