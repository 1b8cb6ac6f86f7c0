package main

import "github.com/raj-sankey/chat-st/cmd/chatst/cmd"

func main() {
	cmd.Execute()
}
