package system

import (
	"fmt"

	"github.com/kaizenhq/kaizen/internal/cli"
)

type MigrateCmd struct {
	Status bool `help:"Only report the schema version."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if c.Status {
		st, err := ctx.Store.SchemaStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version %d of %d", st.Current, st.Latest)
		if len(st.Pending) > 0 {
			fmt.Printf(", %d pending", len(st.Pending))
		}
		fmt.Println()
		return nil
	}

	applied, err := ctx.Store.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(applied) == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
		return nil
	}
	for _, m := range applied {
		fmt.Printf("Applied %03d %s\n", m.Version, m.Name)
	}
	fmt.Printf("\nSuccessfully applied %d migration(s).\n", len(applied))
	return nil
}
