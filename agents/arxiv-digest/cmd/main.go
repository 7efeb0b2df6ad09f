package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arxiv-digest",
	Short: "Daily arXiv astro-ph digest by email",
	Long: `arxiv-digest fetches the astro-ph.GA and astro-ph.CO submissions for a
date window, asks an LLM to select, translate and summarize them into an HTML
digest and mails the result.

Configuration comes from config.yaml (or CONFIG_FILE), .env and the
environment. TARGET_DATE1 and TARGET_DATE2 pick the window; both default to
yesterday.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd, scheduleCmd, fetchCmd)
}

func main() {
	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
