package main

import "github.com/pders01/zfs-tools/cmd"

func main() {
	cmd.Execute()
}
