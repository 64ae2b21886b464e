package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"rich-trivia-service/internal/config"
	"rich-trivia-service/internal/domain"
)

// NewSeedCmd loads a question catalog JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.json>",
		Short: "Load a question catalog into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, args[0])
		},
	}
}

// questionDoc is the stored document shape: the question without its id,
// which is the document key.
type questionDoc struct {
	Text    string          `json:"text"`
	Level   int             `json:"level"`
	Money   int             `json:"money"`
	Answers []domain.Answer `json:"answers"`
}

func runSeed(ctx context.Context, configPath, catalogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	raw, err := os.ReadFile(catalogPath)
	if err != nil {
		return err
	}
	var catalog []domain.Question
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog) == 0 {
		return domain.ErrCatalogEmpty
	}
	if err := domain.ValidateCatalog(catalog); err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, q := range catalog {
		doc, err := json.Marshal(questionDoc{
			Text:    q.Text,
			Level:   q.Level,
			Money:   q.Money,
			Answers: q.Answers,
		})
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO questions (id, data) VALUES (?, ?::jsonb)
			 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
			q.ID, string(doc)); err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	log.Printf("seeded %d questions", len(catalog))
	return nil
}
