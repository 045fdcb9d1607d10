package main

import "github/chapool/side-transfer/cmd"

func main() {
	cmd.Execute()
}
