package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uhppoted/uhppoted-app-sheetsdb/commands"
	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
)

var options = commands.Options{
	Debug: false,
}

func main() {
	cli := &cobra.Command{
		Use:           commands.APP,
		Short:         "Synchronises Google Sheets worksheets with database tables",
		Version:       commands.VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(options.Debug)
		},
	}

	cli.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")

	cli.AddCommand(
		commands.SyncCmd.Command(),
		commands.ShowCmd.Command(),
		commands.GetCmd.Command(),
		commands.PutCmd.Command(),
		commands.AuthoriseCmd.Command(),
		commands.VersionCmd.Command(),
	)

	if err := cli.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "\n   ERROR: %v\n\n", err)
		os.Exit(1)
	}
}
