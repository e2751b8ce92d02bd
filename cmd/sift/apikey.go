package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"companysift/internal/secrets"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the search API key in the OS keychain",
}

var apikeySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the search API key (read from stdin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(os.Stderr, "API key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read API key: %w", err)
		}
		key := strings.TrimSpace(line)
		if len(key) < 10 {
			return fmt.Errorf("API key must be at least 10 characters")
		}
		if err := secrets.SetAPIKey(key); err != nil {
			return fmt.Errorf("store API key: %w", err)
		}
		fmt.Println("API key stored in keychain")
		return nil
	},
}

var apikeyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored search API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.DeleteAPIKey(); err != nil {
			return fmt.Errorf("clear API key: %w", err)
		}
		fmt.Println("API key removed from keychain")
		return nil
	},
}

func init() {
	apikeyCmd.AddCommand(apikeySetCmd, apikeyClearCmd)
	rootCmd.AddCommand(apikeyCmd)
}
