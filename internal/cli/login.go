package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/session"
	"github.com/evcraddock/rentroll/internal/user"
)

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Long:  "Authenticates against the server and stores the session token in the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			return run(cmd, nil, func(ctx context.Context, a *app) error {
				return runLogin(ctx, a, p, email)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when omitted)")

	return cmd
}

func runLogin(ctx context.Context, a *app, p *prompter, email string) error {
	email, err := p.valueOr(email, "Email: ")
	if err != nil {
		return err
	}
	password, err := p.Password("Password: ")
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, user.LoginInput{Email: email, Password: password}); err != nil {
		return err
	}

	// Cached data may belong to the previous account.
	if err := a.dropCache(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	u := a.session.User()
	if a.session.State() == session.PasswordChangeRequired {
		_, err := fmt.Fprintf(a.out, "Logged in as %s. A password change is required: run 'rr passwd'.\n", u.Email)
		return err
	}
	_, err = fmt.Fprintf(a.out, "✓ Logged in as %s (%s).\n", u.Name, u.Role)
	return err
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Long:  "Removes the stored session token and drops the local cache.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, runLogout)
		},
	}
}

func runLogout(ctx context.Context, a *app) error {
	tok, err := fileCredentials{}.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a.session.Logout()
	if err := a.dropCache(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	if tok == "" {
		_, err := fmt.Fprintln(a.out, "Not logged in.")
		return err
	}
	_, err = fmt.Fprintln(a.out, "✓ Logged out.")
	return err
}

func newRegisterCmd() *cobra.Command {
	var in user.RegisterInput
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Registers a new owner or tenant account. Log in afterwards with 'rr login'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			return run(cmd, nil, func(ctx context.Context, a *app) error {
				var err error
				if in.Name, err = p.valueOr(in.Name, "Name: "); err != nil {
					return err
				}
				if in.Email, err = p.valueOr(in.Email, "Email: "); err != nil {
					return err
				}
				if in.Phone, err = p.valueOr(in.Phone, "Phone: "); err != nil {
					return err
				}
				if in.Password, err = p.Password("Password: "); err != nil {
					return err
				}
				in.Role = user.Role(role)

				if err := a.session.Register(ctx, in); err != nil {
					return err
				}
				_, err = fmt.Fprintf(a.out, "✓ Registered %s. Run 'rr login' to sign in.\n", in.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "10 digit phone number")
	cmd.Flags().StringVar(&role, "role", string(user.RoleOwner), "account role (owner|tenant)")

	return cmd
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Long:  "Changes the password of the logged in account. Required after logging in with a temporary password.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			return run(cmd, nil, func(ctx context.Context, a *app) error {
				return runPasswd(ctx, a, p)
			})
		},
	}
}

func runPasswd(ctx context.Context, a *app, p *prompter) error {
	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}

	in := user.PasswordChangeInput{Email: a.session.PendingEmail()}
	if in.Email == "" && a.session.User() != nil {
		in.Email = a.session.User().Email
	}

	var err error
	if in.OldPassword, err = p.Password("Current password: "); err != nil {
		return err
	}
	if in.NewPassword, err = p.Password("New password: "); err != nil {
		return err
	}
	if in.ConfirmPassword, err = p.Password("Confirm new password: "); err != nil {
		return err
	}

	if err := a.session.ChangePassword(ctx, in); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, "✓ Password changed.")
	return err
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, func(ctx context.Context, a *app) error {
				if err := a.session.Bootstrap(ctx); err != nil {
					return err
				}
				u := a.session.User()
				if u == nil {
					return errNotLoggedIn
				}
				if isJSON() {
					return printJSON(a.out, u)
				}
				return printUser(a.out, u, a.session.State())
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Shows the configured server and whether the stored session is still accepted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, nil, runStatus)
		},
	}
}

func runStatus(ctx context.Context, a *app) error {
	if _, err := fmt.Fprintf(a.out, "Server:  %s\n", getServerURL(a.cfg)); err != nil {
		return err
	}

	tok, err := fileCredentials{}.Load()
	if err != nil {
		return err
	}
	if tok == "" {
		_, err := fmt.Fprintln(a.out, "Session: none\n\nRun 'rr login' to authenticate.")
		return err
	}

	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}
	switch a.session.State() {
	case session.Authenticated:
		_, err = fmt.Fprintf(a.out, "Session: ✓ %s (%s)\n", a.session.User().Email, a.session.User().Role)
	case session.PasswordChangeRequired:
		_, err = fmt.Fprintln(a.out, "Session: ! password change required, run 'rr passwd'")
	default:
		_, err = fmt.Fprintln(a.out, "Session: ✗ expired or rejected\n\nRun 'rr login' to re-authenticate.")
	}
	return err
}
