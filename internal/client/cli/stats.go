package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/client/cachestore"
	"github.com/dmitrijs2005/legaltrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/legaltrack/internal/client/session"
)

func (r *runner) statsCmd() *cobra.Command {
	return needsProbe(&cobra.Command{
		Use:   "stats",
		Short: "Show local cache and session details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			a := r.app

			install, err := session.InstallationID(ctx, a.meta)
			if err != nil {
				return err
			}
			account, err := a.meta.Get(ctx, metadata.KeyAccount)
			if err != nil {
				return err
			}
			size, err := a.cache.Size(ctx)
			if err != nil {
				return err
			}
			keys, err := a.cache.Keys(ctx, "")
			if err != nil {
				return err
			}
			cards, err := a.cache.Keys(ctx, cachestore.CaseDetailPrefix)
			if err != nil {
				return err
			}
			pages, err := a.cache.Keys(ctx, cachestore.NotificationsPagePrefix)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Installation:  %s\n", install)
			fmt.Fprintf(out, "Account:       %s\n", orDash(account))
			fmt.Fprintf(out, "Mode:          %s\n", a.observer.Mode())
			if at, ok := a.cache.LastSyncTime(ctx); ok {
				fmt.Fprintf(out, "Last sync:     %s\n", at.Local().Format(timeLayout))
			} else {
				fmt.Fprintln(out, "Last sync:     never")
			}
			fmt.Fprintf(out, "Cache:         %d entries, %d bytes\n", len(keys), size)
			fmt.Fprintf(out, "Case cards:    %d\n", len(cards))
			fmt.Fprintf(out, "Feed pages:    %d\n", len(pages))
			fmt.Fprintf(out, "Read items:    %d\n", len(a.readState.Load(ctx)))
			if id, pending := a.registrar.Pending(ctx); pending {
				fmt.Fprintf(out, "Push id:       %s (not sent)\n", id)
			}
			return nil
		},
	})
}

func (r *runner) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached resource and document; the session stays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := r.app.cache.ClearAll(ctx); err != nil {
				return err
			}
			if err := r.app.documents.Purge(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})
	return cmd
}
