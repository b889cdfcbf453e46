package main

import "github.com/bassamadnan/billsync/cmd"

func main() {
	cmd.Execute()
}
