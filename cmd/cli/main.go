package main

import (
	"fmt"
	"os"

	"github.com/w12190/message.ly/cmd/cli/messages"
	"github.com/w12190/message.ly/cmd/cli/root"
	"github.com/w12190/message.ly/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	users.InitUsers(rootCmd)
	messages.InitMessages(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
