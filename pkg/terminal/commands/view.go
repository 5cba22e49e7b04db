package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ViewCmd struct {
	output string
	out    io.Writer
}

// NewViewCmd renders a local report file.
func NewViewCmd(out io.Writer) *cobra.Command {
	vc := &ViewCmd{out: out}
	cmd := &cobra.Command{
		Use:   "view <report.json>",
		Short: "Render a local report file to HTML",
		Args:  cobra.ExactArgs(1),
		RunE:  vc.run,
	}

	cmd.Flags().StringVarP(&vc.output, "output", "o", "-", "Destination file, - for stdout")

	return cmd
}

func (vc *ViewCmd) run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	v, err := newViewer(nil, "")
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening report file: %w", err)
	}
	defer f.Close()

	if err := v.controller.OnFileSelected(ctx, f); err != nil {
		return err
	}
	return v.writeDocument(vc.out, vc.output)
}
