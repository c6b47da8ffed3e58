package main

import "github.com/employee-api/cmd/api/cmd"

func main() {
	cmd.Execute()
}
