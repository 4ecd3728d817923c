package main

import "github.com/fcmtools/blhelper/cmd"

func main() {
	cmd.Execute()
}
