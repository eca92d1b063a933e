package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/uhppoted/uhppoted-app-sheetsdb/google"
)

var AuthoriseCmd = Authorise{
	workdir:     DEFAULT_WORKDIR,
	credentials: "",
}

// Authorise runs the console OAuth2 flow for Google Sheets access and stores the tokens
// in the work directory.
type Authorise struct {
	workdir     string
	credentials string
	in          io.Reader
	out         io.Writer
}

func (cmd *Authorise) Command() *cobra.Command {
	c := &cobra.Command{
		Use:     "authorise",
		Aliases: []string{"authorize"},
		Short:   "Authorises uhppoted-app-sheetsdb to access Google Sheets",
		Example: `  uhppoted-app-sheetsdb authorise --credentials "credentials.json"`,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cmd.in = c.InOrStdin()
			cmd.out = c.OutOrStdout()

			return cmd.Execute(c.Context())
		},
	}

	c.Flags().StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, digests, etc)")
	c.Flags().StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the Google 'credentials.json' file [GOOGLE_CREDENTIALS]")

	return c
}

func (cmd *Authorise) Execute(ctx context.Context) error {
	credentials := env(cmd.credentials, "GOOGLE_CREDENTIALS")
	if credentials == "" {
		credentials = DEFAULT_CREDENTIALS
	}

	in, out := cmd.in, cmd.out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	if err := google.Authorise(ctx, credentials, cmd.workdir, in, out); err != nil {
		return fmt.Errorf("Authorisation error (%w)", err)
	}

	return nil
}
