package main

import "github.com/chateshreyas231/dineasy-sub000/cmd"

func main() {
	cmd.Execute()
}
