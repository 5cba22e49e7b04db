package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/perf-tools/report-lens/pkg/terminal/commands"
)

// CLI is the command-line surface of the viewer.
type CLI struct {
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI.
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance.
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-lens",
		Short: "Render performance reports from files, the clipboard or the remote store",
	}

	cmd.AddCommand(commands.NewViewCmd(out))
	cmd.AddCommand(commands.NewPasteCmd(out))
	cmd.AddCommand(commands.NewFetchCmd(out))

	return cmd
}
