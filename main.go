package main

import "github.com/Manu343726/armemit/cmd"

func main() {
	cmd.Execute()
}
