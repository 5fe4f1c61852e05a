package main

import "github.com/MrEthical07/goRotate/cmd/rotated/cmd"

func main() {
	cmd.Execute()
}
