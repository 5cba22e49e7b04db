package commands

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type FetchCmd struct {
	output     string
	storesPath string
	profile    string
	out        io.Writer
}

// NewFetchCmd fetches a stored report by identifier or gist URL and renders
// it.
func NewFetchCmd(out io.Writer) *cobra.Command {
	fc := &FetchCmd{out: out}
	cmd := &cobra.Command{
		Use:   "fetch <id-or-url>",
		Short: "Fetch a stored report and render it to HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  fc.run,
	}

	cmd.Flags().StringVarP(&fc.output, "output", "o", "-", "Destination file, - for stdout")
	cmd.Flags().StringVar(&fc.storesPath, "stores", defaultStoresPath(), "Path to the store profiles file")
	cmd.Flags().StringVar(&fc.profile, "profile", "gist", "Store profile to fetch from")

	return cmd
}

func (fc *FetchCmd) run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	reportStore, err := openStore(fc.storesPath, fc.profile)
	if err != nil {
		return err
	}

	v, err := newViewer(reportStore, "")
	if err != nil {
		return err
	}

	arg := args[0]
	if strings.Contains(arg, "://") {
		err = v.controller.OnURLChanged(ctx, arg)
	} else {
		err = v.controller.OnDeepLink(ctx, arg)
	}
	if err != nil {
		return err
	}
	return v.writeDocument(fc.out, fc.output)
}
