package cli

import (
	"github.com/spf13/cobra"

	"github.com/riskibarqy/fixture-sync/internal/app"
)

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down|version|force|goto> [steps|version]",
		Short:     "Apply or inspect the database schema",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "version", "force", "goto"},
		RunE: func(_ *cobra.Command, args []string) error {
			version, err := app.Migrate(c.cfg, c.logger, args[0], args[1:])
			if err != nil {
				return err
			}
			return writeSuccess(c.stdout, version)
		},
	}
}
