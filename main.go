package main

import "github.com/smarteats/orderflow/cmd"

func main() {
	cmd.Execute()
}
