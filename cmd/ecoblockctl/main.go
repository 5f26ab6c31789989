package main

import "ecoblock-backend/cmd/ecoblockctl/cmd"

func main() {
	cmd.Execute()
}
