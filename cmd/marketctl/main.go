package main

import "token_backend/cmd/marketctl/cmd"

func main() {
	cmd.Execute()
}
