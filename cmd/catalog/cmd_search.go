package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/siherrmann/catalog/model"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var (
		entityType string
		all        bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the catalog and print the response as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := buildSearchRequest(args, entityType, all, limit, cfg.SearchConfig().DefaultType)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			logger := newLogger()
			c, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer func() { _ = c.Close() }()

			response, err := c.Search(cmd.Context(), request)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(response)
		},
	}

	cmd.Flags().StringVar(&entityType, "type", "", "entity type (concept|skill|course|track|department|major)")
	cmd.Flags().BoolVar(&all, "all", false, "search all entity types by substring")
	cmd.Flags().IntVar(&limit, "limit", 0, "max results (0 uses the configured default)")
	cmd.MarkFlagsMutuallyExclusive("type", "all")
	return cmd
}

// buildSearchRequest maps the command line onto a search request. A nil
// Type selects the aggregate search.
func buildSearchRequest(args []string, entityType string, all bool, limit int, defaultType model.EntityType) (*model.SearchRequest, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidSearchLimit, limit)
	}

	request := &model.SearchRequest{Limit: limit}
	if len(args) > 0 {
		request.Term = args[0]
	}
	if all {
		return request, nil
	}

	t := defaultType
	if entityType != "" {
		parsed, err := model.ParseEntityType(entityType)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	request.Type = &t

	return request, nil
}
