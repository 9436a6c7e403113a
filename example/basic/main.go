package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/siherrmann/catalog"
	"github.com/siherrmann/catalog/helper"
	"github.com/siherrmann/catalog/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	c, err := catalog.NewCatalog(dbConfig, model.DefaultSearchConfig(), nil)
	if err != nil {
		log.Fatalf("Failed to create catalog: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	concept := model.EntityTypeConcept
	course := model.EntityTypeCourse
	queries := []*model.SearchRequest{
		{Term: "Colors", Type: &concept},         // exact
		{Term: "phonics", Type: &course},         // full-text on the description
		{Term: "seasns", Type: &concept},         // trigram similarity
		{Term: "", Type: &course, Limit: 2},      // default listing
		{Term: "counting"},                       // all types
		{Term: "photosynthesis", Type: &concept}, // no results
	}

	for _, q := range queries {
		response, err := c.Search(ctx, q)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}

		scope := "all"
		if q.Type != nil {
			scope = string(*q.Type)
		}
		fmt.Printf("\n=== %q in %s ===\n", q.Term, scope)
		if response.Message != "" {
			fmt.Println(response.Message)
		}
		if response.Warning != "" {
			fmt.Println("warning:", response.Warning)
		}
		for i, r := range response.Results {
			fmt.Printf("%d. [%s] %s (%s)\n", i+1, r.Type, r.Name, r.Code)
		}
	}

	// Walk the link graph from the first department.
	entities, err := c.AdminEntities(ctx)
	if err != nil {
		log.Fatalf("Failed to list entities: %v", err)
	}
	related, err := c.Related(ctx, model.EntityTypeDepartment, entities.Departments[0].ID, 2, nil)
	if err != nil {
		log.Fatalf("Failed to traverse links: %v", err)
	}
	out, _ := json.MarshalIndent(related, "", "  ")
	fmt.Printf("\n=== related to %s ===\n%s\n", entities.Departments[0].Name, out)
}
