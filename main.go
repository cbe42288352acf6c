package main

import "github.com/Alturino/kickshopping/cmd"

func main() {
	cmd.Start()
}
