package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blocklistCmd = &cobra.Command{
	Use:   "blocklist",
	Short: "Manage the aggregator-site blocklist",
}

var blocklistAddCmd = &cobra.Command{
	Use:   "add <domain>",
	Short: "Add a domain to the blocklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		added, err := st.AddBlockedDomain(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Printf("%s is already blocked\n", args[0])
			return nil
		}
		fmt.Printf("Added %s to blocklist\n", args[0])
		return nil
	},
}

var blocklistRemoveCmd = &cobra.Command{
	Use:   "remove <domain>",
	Short: "Remove a domain from the blocklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		removed, err := st.RemoveBlockedDomain(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Printf("%s was not in the blocklist\n", args[0])
			return nil
		}
		fmt.Printf("Removed %s from blocklist\n", args[0])
		return nil
	},
}

var blocklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blocked domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// include config entries that haven't been seeded by a run yet
		if err := st.SeedBlocklist(cmd.Context(), cfg.Filtering.Blocklist); err != nil {
			return err
		}
		domains, err := st.BlockedDomains(cmd.Context())
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Println("No domains in blocklist")
			return nil
		}
		fmt.Println("Blocked domains:")
		for _, d := range domains {
			fmt.Printf("  - %s\n", d)
		}
		return nil
	},
}

func init() {
	blocklistCmd.AddCommand(blocklistAddCmd, blocklistRemoveCmd, blocklistListCmd)
	rootCmd.AddCommand(blocklistCmd)
}
