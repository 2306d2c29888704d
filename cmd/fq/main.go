package main

import "focusquest/cmd/fq/root"

func main() {
	root.Execute()
}
