package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newBatchCommand(verbose *bool) *cobra.Command {
	var (
		emailsFile string
		dir        string
	)
	cmd := &cobra.Command{
		Use:   "batch [email...]",
		Short: "Collect closed hours for a list of emails into users.txt, groups.txt and hours.txt",
		Long: `batch resolves every email to a Taiga user, sums the labor of their closed tasks
and looks up their study group in the chat service. Results are written to
users.txt (JSON), groups.txt and hours.txt in --dir once all lookups finish.

If users.txt already exists, only groups.txt and hours.txt are regenerated
from it and no requests are made. Otherwise at least one email is required.
Credentials come from TAIGA_LOGIN and TAIGA_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			emails := append([]string(nil), args...)
			if emailsFile != "" {
				fromFile, err := readEmails(emailsFile)
				if err != nil {
					return err
				}
				emails = append(emails, fromFile...)
			}

			a, err := newApp(cmd, *verbose)
			if err != nil {
				return err
			}
			users, err := a.RunBatch(cmd.Context(), emails, dir, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d users written to %s\n", len(users), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&emailsFile, "emails", "", "File with one email per line")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory for users.txt, groups.txt and hours.txt")
	return cmd
}

// readEmails returns the non-blank lines of path.
func readEmails(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no emails in " + path)
	}
	return out, nil
}
