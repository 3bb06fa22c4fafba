package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/client/config"
	"github.com/dmitrijs2005/legaltrack/internal/client/session"
	"github.com/dmitrijs2005/legaltrack/internal/logging"
)

// Command annotations read by the root pre-run hook.
const (
	annotationSession = "session"
	annotationProbe   = "probe"
)

var errNotLoggedIn = errors.New("not logged in, run `legaltrack login` first")

// runner carries the state shared by all commands of one invocation.
type runner struct {
	cfg *config.Config
	in  *bufio.Reader
	app *App

	// newApp is replaced in tests
	newApp func(ctx context.Context, c *config.Config, log logging.Logger) (*App, error)
}

func needsSession(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationSession] = "true"
	cmd.Annotations[annotationProbe] = "true"
	return cmd
}

func needsProbe(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationProbe] = "true"
	return cmd
}

// NewRootCommand builds the command tree over cfg. Global flags bound here
// override whatever cfg already holds.
func NewRootCommand(cfg *config.Config, in io.Reader) (*cobra.Command, func() error) {
	r := &runner{cfg: cfg, in: bufio.NewReader(in), newApp: NewApp}

	root := &cobra.Command{
		Use:               "legaltrack",
		Short:             "Offline-first client for LegalTrack court case monitoring",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
	}
	config.BindFlags(root.PersistentFlags(), cfg)

	root.AddCommand(
		r.loginCmd(),
		r.logoutCmd(),
		needsSession(r.casesCmd()),
		needsSession(r.companiesCmd()),
		needsSession(r.caseCmd()),
		needsSession(r.addCaseCmd()),
		needsSession(r.addCompanyCmd()),
		needsSession(r.deleteCaseCmd()),
		needsSession(r.deleteCompanyCmd()),
		needsSession(r.calendarCmd()),
		needsSession(r.notificationsCmd()),
		needsSession(r.delaysCmd()),
		needsSession(r.documentCmd()),
		needsSession(r.pushOpenCmd()),
		needsSession(r.watchCmd()),
		r.pushIDCmd(),
		r.statsCmd(),
		r.cacheCmd(),
		versionCmd(),
	)
	return root, r.close
}

func builtin(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" || c.Name() == "version" {
			return true
		}
	}
	return false
}

func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	if builtin(cmd) {
		return nil
	}
	if err := r.cfg.Validate(); err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logging.New(cmd.ErrOrStderr(), r.cfg.LogLevel, r.cfg.LogFormat)

	app, err := r.newApp(ctx, r.cfg, log)
	if err != nil {
		return err
	}
	r.app = app

	if cmd.Annotations[annotationSession] == "true" {
		if _, err := app.RestoreSession(ctx); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return errNotLoggedIn
			}
			return err
		}
	}
	if cmd.Annotations[annotationProbe] == "true" {
		app.CheckOnline(ctx)
	}
	return nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

// Run loads configuration, executes the command named in args and releases
// everything it opened.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	root, closeApp := NewRootCommand(cfg, in)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err = root.ExecuteContext(ctx)
	if cerr := closeApp(); cerr != nil && err == nil {
		err = fmt.Errorf("shutdown: %w", cerr)
	}
	return err
}
