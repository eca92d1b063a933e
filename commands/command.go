package commands

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/api/option"

	"github.com/uhppoted/uhppoted-app-sheetsdb/google"
	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
	"github.com/uhppoted/uhppoted-app-sheetsdb/reconcile"
	"github.com/uhppoted/uhppoted-app-sheetsdb/xlsx"
)

const APP = "uhppoted-app-sheetsdb"

// Options holds the global command line options.
type Options struct {
	Debug bool
}

// spreadsheet is the union of the Google Sheets and Excel workbook services.
type spreadsheet interface {
	reconcile.Spreadsheet
	Update(ctx context.Context, spreadsheet string, area string, rows [][]string) error
	Append(ctx context.Context, spreadsheet string, area string, rows [][]string) error
	Prune(ctx context.Context, spreadsheet string, area string, cutoff time.Time) (int, error)
}

// command holds the spreadsheet options shared by every command that accesses a worksheet.
type command struct {
	workdir     string
	credentials string
	url         string
	workbook    string
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

func (c *command) flags(flagset *pflag.FlagSet) {
	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, digests, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the Google 'credentials.json' or service account key file [GOOGLE_CREDENTIALS]")
	flagset.StringVar(&c.url, "url", c.url, "Google Sheets spreadsheet URL [SHEETS_URL]")
	flagset.StringVar(&c.workbook, "workbook", c.workbook, "Local Excel workbook to use instead of Google Sheets")
}

// spreadsheet returns the spreadsheet service and spreadsheet identifier i.e. the Google
// Sheets spreadsheet ID or the workbook path.
func (c *command) spreadsheet(ctx context.Context) (spreadsheet, string, error) {
	if workbook := strings.TrimSpace(c.workbook); workbook != "" {
		log.Debugf("workbook %v", workbook)

		return xlsx.Workbook{}, workbook, nil
	}

	url := env(c.url, "SHEETS_URL")
	credentials := env(c.credentials, "GOOGLE_CREDENTIALS")

	if url == "" {
		return nil, "", fmt.Errorf("%w: --url or --workbook is a required option", reconcile.ErrConfigurationMissing)
	}

	if credentials == "" {
		credentials = DEFAULT_CREDENTIALS
	}

	id, err := spreadsheetID(url)
	if err != nil {
		return nil, "", err
	}

	log.Debugf("spreadsheet ID:%s", id)

	client, err := google.Client(ctx, credentials, c.workdir)
	if err != nil {
		return nil, "", fmt.Errorf("Authentication/authorization error (%w)", err)
	}

	sheets, err := google.NewSheets(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, "", err
	}

	return sheets, id, nil
}

func spreadsheetID(url string) (string, error) {
	match := spreadsheetURL.FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("%w: invalid spreadsheet URL - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", reconcile.ErrConfigurationInvalid)
	}

	return match[1], nil
}

// env returns the trimmed value or, if it is blank, the environment variable.
func env(v string, key string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}

	return strings.TrimSpace(os.Getenv(key))
}
