package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"companysift/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint state for the current data directory",
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

		state, ok, err := st.LoadRunState(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No run recorded yet")
			return nil
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s %s\n", bold("Run:"), state.RunID)
		fmt.Printf("  Input:     %s\n", state.InputFile)
		fmt.Printf("  Output:    %s\n", state.OutputFile)
		fmt.Printf("  Status:    %s\n", colorStatus(state.Status))
		fmt.Printf("  Progress:  %d/%d (last: %s)\n", state.Processed, state.Total, state.LastCompanyNo)
		fmt.Printf("  Started:   %s\n", state.StartedAt.Local().Format(time.RFC1123))
		fmt.Printf("  Updated:   %s\n", state.UpdatedAt.Local().Format(time.RFC1123))

		counts, err := st.CountByStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("  Outcomes:  %d success, %d no-match, %d failed\n",
			counts[domain.StatusSuccess], counts[domain.StatusNoMatch], counts[domain.StatusFailed])
		return nil
	},
}

func colorStatus(s string) string {
	switch s {
	case domain.RunCompleted:
		return color.GreenString(s)
	case domain.RunAborted:
		return color.RedString(s)
	default:
		return color.YellowString(s)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
