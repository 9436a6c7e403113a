package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed links.sql
var linksSQL string

// Function lists for verification
var EntitiesFunctions = []string{
	"entity_table",
	"init_entities",
	"insert_entity",
	"select_entity",
	"delete_entity",
	"select_entity_refs",
	"select_entities_default",
	"select_entities_exact",
	"select_entities_contains",
	"select_entities_fulltext",
	"select_entities_similarity",
}

var LinksFunctions = []string{
	"init_links",
	"insert_link",
	"delete_link",
	"select_linked_entities",
}

// Init tries to enable the optional extensions. A missing pg_trgm is not an error.
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing init SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEntitiesSql loads entity table and search functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	return load(db, "entities", entitiesSQL, EntitiesFunctions, force)
}

// LoadLinksSql loads relation functions. Entities must be loaded first.
func LoadLinksSql(db *sql.DB, force bool) error {
	return load(db, "links", linksSQL, LinksFunctions, force)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}

	if err := LoadLinksSql(db, force); err != nil {
		return err
	}

	return nil
}

func load(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", name)
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
