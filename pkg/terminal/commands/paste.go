package commands

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type PasteCmd struct {
	output     string
	storesPath string
	profile    string
	out        io.Writer
}

// NewPasteCmd renders whatever the clipboard holds: a gist URL is fetched
// from the configured store, raw JSON is rendered directly.
func NewPasteCmd(out io.Writer) *cobra.Command {
	pc := &PasteCmd{out: out}
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Render the report on the clipboard",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}

	cmd.Flags().StringVarP(&pc.output, "output", "o", "-", "Destination file, - for stdout")
	cmd.Flags().StringVar(&pc.storesPath, "stores", defaultStoresPath(), "Path to the store profiles file")
	cmd.Flags().StringVar(&pc.profile, "profile", "gist", "Store profile used for fetching by identifier")

	return cmd
}

func (pc *PasteCmd) run(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	text, err := clipboard.ReadAll()
	if err != nil {
		return err
	}

	reportStore, err := openStore(pc.storesPath, pc.profile)
	if err != nil {
		// A URL paste needs the store; a raw JSON paste does not, so keep
		// going without one.
		logger.Warn().Err(err).Msg("store unavailable, only raw JSON pastes will work")
		reportStore = nil
	}

	v, err := newViewer(reportStore, "")
	if err != nil {
		return err
	}
	if err := v.controller.OnPasteText(ctx, text); err != nil {
		return err
	}
	return v.writeDocument(pc.out, pc.output)
}
