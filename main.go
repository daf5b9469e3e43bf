/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/profileviz/cmd"

func main() {
	cmd.Execute()
}
