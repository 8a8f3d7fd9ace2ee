// Command justtrades runs the JustTrades Discord bot.
package main

import (
	"context"
	"fmt"
	"os"

	"justtrades-bot/internal/cli"
	"justtrades-bot/internal/logging"
)

func main() {
	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(logger)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
