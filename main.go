package main

import "github.com/Mohsinsiddi/benchadapter/cmd"

func main() {
	cmd.Execute()
}
