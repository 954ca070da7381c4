// Command seed imports notes into a notebook from a spreadsheet.
// Column headers become field names, so a seeded notebook is
// immediately analyzable.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"notelens/adapters/excel"
	"notelens/adapters/postgres"
	"notelens/domain/core"
)

func main() {
	godotenv.Load()

	if len(os.Args) < 3 {
		log.Fatal("Usage: seed <notebook_id> <workbook.xlsx>")
	}
	notebookID, err := core.ParseNotebookID(os.Args[1])
	if err != nil {
		log.Fatalf("Invalid notebook ID: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx := context.Background()
	notebooks := postgres.NewNotebookRepository(db)
	if _, err := notebooks.GetByID(ctx, notebookID); err != nil {
		log.Fatalf("Notebook lookup failed: %v", err)
	}

	notes, err := excel.NewReader(os.Args[2]).ReadNotes(notebookID)
	if err != nil {
		log.Fatalf("Failed to read workbook: %v", err)
	}

	repo := postgres.NewNoteRepository(db)
	for _, n := range notes {
		if err := repo.Create(ctx, n); err != nil {
			log.Fatalf("Failed to create note %s: %v", n.ID, err)
		}
	}
	log.Printf("Imported %d notes into notebook %s", len(notes), notebookID)
}
