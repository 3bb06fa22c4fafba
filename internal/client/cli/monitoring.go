package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (r *runner) casesCmd() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List monitored cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, out := r.app, cmd.OutOrStdout()
			st := a.monitoring.Load(cmd.Context())
			if err := surface(st); err != nil {
				return err
			}
			r.printStatus(out, st.FromCache, st.LastSync)

			if len(st.Data.Cases) == 0 {
				fmt.Fprintln(out, "no monitored cases")
				return nil
			}
			for _, c := range st.Data.Cases {
				court := c.CourtName
				if c.IsSou() {
					court += " (СОЮ)"
				}
				fmt.Fprintf(out, "%8d  %-24s  %s\n", c.ID, c.DisplayTitle(), orDash(court))
			}

			if p := a.prefetcher.Progress(); wait && p.InProgress {
				fmt.Fprintf(out, "saving %d case cards for offline use...\n", p.Total)
				a.prefetcher.Wait()
				p = a.prefetcher.Progress()
				fmt.Fprintf(out, "processed %d of %d\n", p.Done, p.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for case cards to be saved for offline use")
	return cmd
}

func (r *runner) companiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List monitored companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			st := r.app.monitoring.Load(cmd.Context())
			if err := surface(st); err != nil {
				return err
			}
			r.printStatus(out, st.FromCache, st.LastSync)

			if len(st.Data.Companies) == 0 {
				fmt.Fprintln(out, "no monitored companies")
				return nil
			}
			for _, c := range st.Data.Companies {
				fmt.Fprintf(out, "%8d  %-12s  %s\n", c.ID, orDash(c.INN), c.DisplayName())
			}
			return nil
		},
	}
}

func (r *runner) caseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "case <id>",
		Short: "Show the card of one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.showCase(cmd, id)
		},
	}
}

func (r *runner) showCase(cmd *cobra.Command, id int) error {
	out := cmd.OutOrStdout()
	st := r.app.details.Load(cmd.Context(), id)
	if err := surface(st); err != nil {
		return err
	}
	r.printStatus(out, st.FromCache, st.LastSync)
	d := st.Data
	if d == nil {
		fmt.Fprintln(out, "case card is not available offline")
		return nil
	}

	number := d.Value
	if number == "" {
		number = d.Name
	}
	fmt.Fprintf(out, "Дело:      %s\n", orDash(number))
	fmt.Fprintf(out, "Суд:       %s\n", orDash(d.CourtName+d.Courts))
	fmt.Fprintf(out, "Судья:     %s\n", orDash(d.Judge))
	fmt.Fprintf(out, "Статус:    %s\n", orDash(d.Status))
	fmt.Fprintf(out, "Категория: %s\n", orDash(d.Category))
	fmt.Fprintf(out, "Истцы:     %s\n", orDash(d.Plaintiffs))
	fmt.Fprintf(out, "Ответчики: %s\n", orDash(d.Defendants))
	if s := d.NearestSession; s != nil {
		fmt.Fprintf(out, "Заседание: %s %s\n", s.Date, s.Cabinet)
	}
	return nil
}

func (r *runner) addCaseCmd() *cobra.Command {
	var sou bool
	cmd := &cobra.Command{
		Use:   "add-case <number>",
		Short: "Start monitoring a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.app.monitoring.AddCase(cmd.Context(), args[0], sou); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "case added")
			return nil
		},
	}
	cmd.Flags().BoolVar(&sou, "sou", false, "court of general jurisdiction")
	return cmd
}

func (r *runner) addCompanyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-company <inn>",
		Short: "Start monitoring a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.app.monitoring.AddCompany(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "company added")
			return nil
		},
	}
}

func (r *runner) deleteCaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-case <id>",
		Short: "Stop monitoring a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.app.monitoring.DeleteCase(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "case deleted")
			return nil
		},
	}
}

func (r *runner) deleteCompanyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-company <id>",
		Short: "Stop monitoring a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.app.monitoring.DeleteCompany(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "company deleted")
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
