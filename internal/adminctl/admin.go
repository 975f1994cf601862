package adminctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/and161185/minuteminds/internal/service"
)

var getenv = os.Getenv

type createAdminOpts struct {
	email         string
	name          string
	password      string
	resetPassword bool
}

func newCreateAdminCmd(o *rootOpts) *cobra.Command {
	c := &createAdminOpts{}
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing one",
		Long: "Creates an admin account. If the email is already registered, the account is\n" +
			"promoted to admin; with --reset-password its password is replaced as well.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, o)
		},
	}
	cmd.Flags().StringVar(&c.email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&c.name, "name", "", "display name for a new account")
	cmd.Flags().StringVar(&c.password, "password", "", "password; prompted when empty")
	cmd.Flags().BoolVar(&c.resetPassword, "reset-password", false, "replace the password of an existing account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *createAdminOpts) run(cmd *cobra.Command, o *rootOpts) error {
	cfg, err := o.config(getenv)
	if err != nil {
		return err
	}
	log := o.logger()
	storage, err := o.open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer storage.Close()

	users := storage.Store.Users
	password := c.password
	if password == "" {
		_, lookupErr := users.GetByEmail(cmd.Context(), service.NormalizeEmail(c.email))
		if lookupErr != nil || c.resetPassword {
			if password, err = promptPassword(cmd); err != nil {
				return err
			}
		}
	}

	res, err := service.ProvisionAdmin(cmd.Context(), users, service.NewRecorder(storage.Store.Audit, log),
		c.email, c.name, password, c.resetPassword)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Created:
		fmt.Fprintf(out, "created admin %s (%s)\n", res.User.Email, res.User.ID)
	case res.Promoted:
		fmt.Fprintf(out, "promoted %s (%s) to admin\n", res.User.Email, res.User.ID)
	default:
		fmt.Fprintf(out, "%s (%s) is already an admin\n", res.User.Email, res.User.ID)
	}
	if res.PasswordChanged {
		fmt.Fprintln(out, "password updated")
	}
	return nil
}

// promptPassword reads a password without echo from a terminal, asking twice,
// or a single line from piped stdin.
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(cmd.InOrStdin())
	}
	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
