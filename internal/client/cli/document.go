package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/legaltrack/internal/filex"
)

func (r *runner) documentCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "document <case-id> <doc-id> <url>",
		Short: "Download a court document, or open the saved copy when offline",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			caseID, err := parseID(args[0])
			if err != nil {
				return err
			}
			docID, url := args[1], args[2]

			var (
				data []byte
				name string
			)
			if r.app.observer.IsConnected() {
				data, name, err = r.app.documents.Fetch(ctx, caseID, docID, url)
				if err != nil {
					return err
				}
			} else {
				var ok bool
				data, name, ok = r.app.documents.Cached(ctx, caseID, docID)
				if !ok {
					return fmt.Errorf("offline and the document was never opened before")
				}
			}

			if outPath != "" {
				if err := filex.WriteFileAtomic(outPath, data); err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %s (%d bytes)\n", outPath, len(data))
				return nil
			}
			fmt.Fprintf(out, "%s (%d bytes)\n", name, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the PDF to this path")
	return cmd
}
