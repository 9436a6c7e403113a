package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample kindergarten catalog and its links",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			c, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer func() { _ = c.Close() }()

			if err := c.Seed(cmd.Context()); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return nil
		},
	}
}
