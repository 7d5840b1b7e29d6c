package main

import "customer-merger/cmd"

func main() {
	cmd.Execute()
}
