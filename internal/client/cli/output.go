package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/client/resource"
)

const timeLayout = "02.01.2006 15:04"

// surface turns a state that has nothing to show into a command error.
func surface[T any](st resource.State[T]) error {
	if st.Err != nil && !st.HasData {
		return errors.New(st.Message)
	}
	return nil
}

// printStatus writes the offline banner and the data age when the output
// comes from the local cache.
func (r *runner) printStatus(w io.Writer, fromCache bool, lastSync time.Time) {
	online := r.app.observer.IsConnected()
	switch {
	case !online && lastSync.IsZero():
		fmt.Fprintln(w, "offline: no saved data yet")
	case !online:
		fmt.Fprintf(w, "offline: showing data saved %s\n", lastSync.Local().Format(timeLayout))
	case fromCache && !lastSync.IsZero():
		fmt.Fprintf(w, "showing data saved %s\n", lastSync.Local().Format(timeLayout))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
