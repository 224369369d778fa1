package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Commander is implemented by targets that can run once their options have
// been parsed. Execute receives the leftover non-option arguments.
type Commander interface {
	Execute(args []string) error
}

// Command wraps a target's option set into a runnable *cobra.Command.
// Cobra's own flag parsing is disabled: arguments flow through the
// synthesized parser, so inheritance, grouping and repeat rules behave
// exactly as with Parse, and the command's help output is this package's
// renderer. If the target implements Commander, its Execute method runs
// with the leftover arguments.
func Command(target any, apply ...Setting) (*cobra.Command, error) {
	parser, err := MakeParser(target, apply...)
	if err != nil {
		return nil, err
	}

	use := parser.cfg.prog
	if use == "" {
		use = strings.ToLower(parser.tval.Type().Name())
	}
	if parser.cfg.usage != "" {
		use += " " + parser.cfg.usage
	}

	cmd := &cobra.Command{
		Use:                use,
		Short:              parser.cfg.description,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rest, err := parser.Parse(args)
			if err != nil {
				return err
			}

			if runner, ok := target.(Commander); ok {
				return runner.Execute(rest)
			}

			return nil
		},
	}

	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), parser.Help())
	})

	return cmd, nil
}
