package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordlegame-go/internal/api/response"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records [name]",
		Short: "Show player records (admin)",
		Long: `Show every player's records, or one player's in detail when a name
is given. Requires a token from "wordlectl login".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var result response.PlayerRecord
				if err := client.Get("/api/records/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var result response.Records
			if err := client.Get("/api/records", &result); err != nil {
				return err
			}
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newRecordsResetCmd())

	return cmd
}

func newRecordsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every player's records (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireToken(); err != nil {
				return err
			}
			if err := client.Delete("/api/records"); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Records reset")
			return nil
		},
	}
}

func requireToken() error {
	if cfg.Token == "" {
		return errors.New(`not logged in: run "wordlectl login" or pass --token`)
	}
	return nil
}
