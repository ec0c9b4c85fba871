package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atharv3903/roamer/internal/db"
	"github.com/atharv3903/roamer/internal/graph"
)

var seedCmd = &cobra.Command{
	Use:   "seed <graph.yaml>",
	Short: "Load a graph file into the nodes and edges tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driver, dsn := dbFlags(cmd)
		if dsn == "" {
			return errors.New("--dsn or DB_DSN is required")
		}
		g, err := graph.LoadFile(args[0])
		if err != nil {
			return err
		}

		st, err := db.Open(driver, dsn)
		if err != nil {
			return err
		}
		defer st.DB.Close()

		ctx := cmd.Context()
		if err := st.EnsureSchema(ctx); err != nil {
			return err
		}
		edges := g.Edges()
		if err := st.Import(ctx, g.Nodes(), edges); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d nodes, %d edges\n", len(g.Nodes()), len(edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
