package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/client/push"
	"github.com/dmitrijs2005/legaltrack/internal/client/session"
)

func (r *runner) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "Sign in with an API token",
		Long: "Sign in with an API token. The token comes from the argument, --token, " +
			"LEGALTRACK_TOKEN or a hidden prompt. Data of the previous account is wiped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			token := r.cfg.Token
			if len(args) == 1 {
				token = args[0]
			}
			if token == "" {
				var err error
				token, err = GetSecret(r.in, "Token", out)
				if err != nil {
					return err
				}
			}

			acc, err := r.app.session.Login(ctx, token)
			if err != nil {
				return err
			}
			who := acc.Subject
			if who == "" {
				who = acc.ID
			}
			fmt.Fprintf(out, "logged in as %s\n", who)
			if !acc.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "token expires %s\n", acc.ExpiresAt.Local().Format(timeLayout))
			}
			return nil
		},
	}
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and wipe every cached resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := r.app.session.Restore(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
				return err
			}
			if err := r.app.session.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (r *runner) pushIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push-id <id>",
		Short: "Store the push subscriber id and forward it when signed in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			if _, err := r.app.session.Restore(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
				return err
			}
			if err := r.app.registrar.SetSubscriberID(ctx, args[0]); err != nil {
				return err
			}
			if _, pending := r.app.registrar.Pending(ctx); pending {
				fmt.Fprintln(out, "push id saved, it will be sent after login")
				return nil
			}
			fmt.Fprintln(out, "push id sent")
			return nil
		},
	}
}

func (r *runner) pushOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push-open <payload-json>",
		Short: "Open the screen a push notification points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var target push.Target
			h := push.NewHandler(func(t push.Target) { target = t }, r.app.log)
			ok, err := h.HandleJSON(cmd.Context(), []byte(args[0]))
			if err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}
			if !ok {
				fmt.Fprintln(out, "payload does not point to anything")
				return nil
			}

			if target.Kind == push.TargetCase {
				return r.showCase(cmd, target.ID)
			}
			fmt.Fprintf(out, "open %s %d\n", target.Kind, target.ID)
			return nil
		},
	}
}
