package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(cfgPath *string) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the analysis service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			if email == "" {
				email, err = prompt("Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt("Password: ")
				if err != nil {
					return err
				}
			}

			id, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return a.finish(err)
			}
			a.sess.SetIdentity(*id)
			fmt.Printf("Signed in as %s\n", displayName(id.Profile.FullName, id.Profile.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newSignupCmd(cfgPath *string) *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new patient account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			if email == "" || password == "" {
				return fmt.Errorf("both --email and --password are required")
			}
			if err := a.client.Signup(cmd.Context(), email, password, fullName); err != nil {
				return a.finish(err)
			}
			fmt.Println("Account created. Check your email to verify it, then run `dermasense login`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	return cmd
}

func newLogoutCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			if !a.sess.Authenticated() {
				fmt.Println("Already signed out.")
				return nil
			}
			a.sess.Clear()
			return nil
		},
	}
}

func newWhoamiCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *cfgPath)
			if err != nil {
				return err
			}
			if !a.sess.Authenticated() {
				fmt.Println("Not signed in. Run `dermasense login`.")
				return nil
			}
			p, err := a.client.Profile(cmd.Context())
			if err != nil {
				return a.finish(err)
			}
			fmt.Printf("%s <%s>\n", displayName(p.FullName, "patient"), p.Email)
			return nil
		},
	}
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
