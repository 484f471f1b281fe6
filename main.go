/*
Copyright 2023 Markus Papenbrock
*/
package main

import "github.com/mpapenbr/stintdeg/cmd"

func main() {
	cmd.Execute()
}
