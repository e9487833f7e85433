package main

import "github.com/frahmantamala/clinic-access/cmd"

func main() {
	cmd.Execute()
}
