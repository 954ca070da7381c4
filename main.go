package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"notelens/adapters/postgres"
	"notelens/internal/config"
	"notelens/internal/container"
	"notelens/internal/errors"
	"notelens/ui"
)

// initDatabase opens the PostgreSQL connection and applies migrations
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	server := ui.NewServer(ui.Deps{
		Notebooks: appContainer.NotebookRepo,
		Notes:     appContainer.NoteRepo,
		Charts:    appContainer.ChartRepo,
		Pipeline:  appContainer.Pipeline,
		Logger:    appContainer.Logger,
	})

	apiServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminServer := &http.Server{
		Addr:              ":" + appConfig.Server.AdminPort,
		Handler:           ui.NewAdminRouter(db, appContainer.Pipeline),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var group errgroup.Group
	group.Go(func() error {
		log.Printf("Starting NoteLens API server on port %s", appConfig.Server.Port)
		return apiServer.ListenAndServe()
	})
	group.Go(func() error {
		log.Printf("Starting admin server on port %s", appConfig.Server.AdminPort)
		return adminServer.ListenAndServe()
	})
	if err := group.Wait(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
