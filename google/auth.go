package google

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/uhppoted/uhppoted-app-sheetsdb/log"
)

const SHEETS = "https://www.googleapis.com/auth/spreadsheets"

// Client returns an HTTP client authorised for the Google Sheets API. A service account
// key file is used directly. An OAuth2 client credentials file requires a tokens file in
// the working directory, created by Authorise.
func Client(ctx context.Context, credentials string, workdir string) (*http.Client, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	if isServiceAccount(b) {
		config, err := google.JWTConfigFromJSON(b, SHEETS)
		if err != nil {
			return nil, err
		}

		return config.Client(ctx), nil
	}

	config, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return nil, err
	}

	tokens := TokensFile(credentials, workdir)
	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("no valid tokens in %v - run 'authorise' to authorise access (%w)", tokens, err)
	}

	return config.Client(ctx, token), nil
}

// Authorise runs the console OAuth2 flow: the authorisation URL is printed, the code
// pasted in by the user is exchanged for a token and the token is saved for use by Client.
func Authorise(ctx context.Context, credentials string, workdir string, in io.Reader, out io.Writer) error {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return err
	}

	if isServiceAccount(b) {
		return fmt.Errorf("%v is a service account key and does not require authorisation", credentials)
	}

	config, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return err
	}

	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", url)

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("Unable to read authorization code (%w)", err)
	} else if code = strings.TrimSpace(code); code == "" {
		return fmt.Errorf("missing authorization code")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("Unable to retrieve token from web (%w)", err)
	}

	tokens := TokensFile(credentials, workdir)
	if err := saveToken(tokens, token); err != nil {
		return err
	}

	log.Infof("saved OAuth2 tokens to %v", tokens)

	return nil
}

// TokensFile returns the path of the tokens file for a credentials file i.e.
// <workdir>/<credentials name>.sheets.
func TokensFile(credentials string, workdir string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(workdir, fmt.Sprintf("%s.sheets", name))
}

func isServiceAccount(b []byte) bool {
	credentials := struct {
		Type string `json:"type"`
	}{}

	if err := json.Unmarshal(b, &credentials); err != nil {
		return false
	}

	return credentials.Type == "service_account"
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("Unable to cache OAuth token (%w)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
