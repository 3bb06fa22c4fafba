package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/client/models"
)

func (r *runner) calendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show upcoming hearings grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			st := r.app.calendar.Load(cmd.Context())
			if err := surface(st); err != nil {
				return err
			}
			r.printStatus(out, st.FromCache, st.LastSync)

			days := r.app.calendar.Days()
			if len(days) == 0 {
				fmt.Fprintln(out, "no events")
				return nil
			}
			for _, d := range days {
				fmt.Fprintln(out, d.Title)
				for _, ev := range d.Events {
					fmt.Fprintf(out, "  %s  %s\n", eventTime(ev.DatetimeStart), ev.Head)
					if ev.SecondLine != "" {
						fmt.Fprintf(out, "         %s\n", ev.SecondLine)
					}
				}
			}
			return nil
		},
	}
}

// eventTime cuts HH:MM out of the usual "yyyy-mm-dd hh:mm:ss" form.
func eventTime(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 && len(s) >= i+6 {
		return s[i+1 : i+6]
	}
	return "--:--"
}

func (r *runner) notificationsCmd() *cobra.Command {
	var (
		pages   int
		markAll bool
	)
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show the notification feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			feed := r.app.feed

			st := feed.LoadFirstPage(ctx)
			if err := surface(st); err != nil {
				return err
			}
			r.printStatus(out, st.FromCache, st.LastSync)

			// scrolling: ask for the next page while the last item is visible
			for loaded := 1; loaded < pages; loaded++ {
				items := feed.Items()
				if len(items) == 0 || !feed.LoadMoreIfNeeded(ctx, items[len(items)-1]) {
					break
				}
			}

			if markAll {
				if err := feed.MarkAllRead(ctx); err != nil {
					return err
				}
			}

			groups := feed.Groups()
			if len(groups) == 0 {
				fmt.Fprintln(out, "no notifications")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintln(out, g.Title)
				for _, n := range g.Items {
					printNotification(out, n)
				}
			}
			fmt.Fprintf(out, "unread: %d\n", feed.UnreadCount())
			if feed.HasMorePages() {
				fmt.Fprintln(out, "more pages available, use --pages")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().BoolVar(&markAll, "mark-all-read", false, "mark every loaded notification as read")
	return cmd
}

func printNotification(w io.Writer, n models.Notification) {
	mark := "*"
	if n.IsRead {
		mark = " "
	}
	fmt.Fprintf(w, " %s %s  %s\n", mark, n.TextHeader, n.Meta)
	if n.TextSubHeader != "" {
		fmt.Fprintf(w, "     %s\n", n.TextSubHeader)
	}
	if n.Text != "" {
		fmt.Fprintf(w, "     %s\n", n.Text)
	}
}

func (r *runner) delaysCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "delays",
		Short: "Show hearing postponements (paid tariffs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			svc := r.app.delays

			if search != "" {
				items, err := svc.Search(ctx, search)
				if err != nil {
					return err
				}
				printDelays(out, items)
				return nil
			}

			st := svc.Load(ctx)
			if err := surface(st); err != nil {
				return err
			}
			r.printStatus(out, st.FromCache, st.LastSync)

			if tariff, ok := svc.Tariff(ctx); ok && !tariff.Active {
				fmt.Fprintln(out, orDash(tariff.Header))
				if tariff.Text != "" {
					fmt.Fprintln(out, tariff.Text)
				}
				return nil
			}
			printDelays(out, st.Data)
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "look up postponements by case number")
	return cmd
}

func printDelays(w io.Writer, items []models.DelayItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no postponements")
		return
	}
	for _, d := range items {
		fmt.Fprintf(w, "%s  %s\n", d.DatetimeStart, d.Head)
		if d.DelayText != "" {
			fmt.Fprintf(w, "  %s\n", d.DelayText)
		}
	}
}
