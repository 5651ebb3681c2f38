package main

import "defectprep/cmd"

func main() {
	cmd.Execute()
}
