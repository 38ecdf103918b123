package main

import (
	"os"

	"github.com/groblegark/jiragraph/internal/jira"
	"github.com/groblegark/jiragraph/internal/ui"
	"github.com/spf13/cobra"
)

var (
	jiraURL     string
	username    string
	password    string
	bearer      string
	cookie      string
	noAuth      bool
	noVerifySSL bool
	jsonOutput  bool

	tracker jira.Tracker
)

func defaultJiraURL() string {
	if s := os.Getenv("JIRAGRAPH_URL"); s != "" {
		return s
	}
	if r, ok := activeRemote(); ok && r.URL != "" {
		return r.URL
	}
	return "http://jira.example.com"
}

// resolveAuth picks the authentication mode from flags, falling back to the
// active remote profile, then to interactive prompts for basic auth.
func resolveAuth() (jira.Auth, error) {
	if noAuth {
		return jira.Auth{}, nil
	}
	if cookie != "" {
		return jira.Auth{Cookie: cookie}, nil
	}
	if bearer != "" {
		return jira.Auth{Bearer: bearer}, nil
	}
	if username == "" && password == "" {
		if r, ok := activeRemote(); ok {
			switch {
			case r.Bearer != "":
				return jira.Auth{Bearer: r.Bearer}, nil
			case r.Cookie != "":
				return jira.Auth{Cookie: r.Cookie}, nil
			case r.User != "":
				return jira.Auth{Username: r.User, Token: r.Token}, nil
			}
		}
	}

	user := username
	if user == "" {
		var err error
		if user, err = ui.PromptLine("Username: "); err != nil {
			return jira.Auth{}, err
		}
	}
	token := password
	if token == "" {
		var err error
		if token, err = ui.PromptPassword("Password: "); err != nil {
			return jira.Auth{}, err
		}
	}
	return jira.Auth{Username: user, Token: token}, nil
}

var rootCmd = &cobra.Command{
	Use:   "jg <command>",
	Short: "Build and render issue dependency graphs from a Jira tracker",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		auth, err := resolveAuth()
		if err != nil {
			return err
		}
		tracker = jira.NewHTTPClient(jiraURL, auth, noVerifySSL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&jiraURL, "jira", "j", defaultJiraURL(), "Jira base URL (with protocol)")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "username for basic auth")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "password or API token for basic auth")
	rootCmd.PersistentFlags().StringVarP(&bearer, "bearer", "b", "", "bearer token")
	rootCmd.PersistentFlags().StringVarP(&cookie, "cookie", "c", "", "JSESSIONID session cookie value")
	rootCmd.PersistentFlags().BoolVarP(&noAuth, "no-auth", "N", false, "use no authentication")
	rootCmd.PersistentFlags().BoolVar(&noVerifySSL, "no-verify-ssl", false, "do not verify TLS certificates")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
