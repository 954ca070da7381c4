// Package container wires the application dependencies and manages
// their lifecycle.
package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"notelens/adapters/llm"
	"notelens/adapters/postgres"
	"notelens/internal"
	"notelens/internal/aggregate"
	"notelens/internal/config"
	"notelens/internal/pipeline"
	"notelens/internal/selector"
	"notelens/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	NotebookRepo ports.NotebookRepository
	NoteRepo     ports.NoteRepository
	ChartRepo    ports.ChartRepository

	// AI collaborators
	Collaborator *llm.Collaborator

	// Pipeline
	Pipeline *pipeline.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		Logger: internal.DefaultLogger,
	}, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.DB = db

	c.NotebookRepo = postgres.NewNotebookRepository(db)
	c.NoteRepo = postgres.NewNoteRepository(db)
	c.ChartRepo = postgres.NewChartRepository(db)

	if err := c.initCollaborators(); err != nil {
		return fmt.Errorf("failed to initialize collaborators: %w", err)
	}
	c.initPipeline()

	c.Logger.Info("container initialized with database connection")
	return nil
}

// initCollaborators builds the chat completion client and the
// recommend/derive/rerank collaborator on top of it.
func (c *Container) initCollaborators() error {
	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      c.Config.AI.APIKey,
		BaseURL:     c.Config.AI.BaseURL,
		Model:       c.Config.AI.Model,
		Timeout:     c.Config.AI.Timeout,
		Temperature: c.Config.AI.Temperature,
		MaxTokens:   c.Config.AI.MaxTokens,
	})
	if err != nil {
		return err
	}
	c.Collaborator = llm.NewCollaborator(client)
	return nil
}

func (c *Container) initPipeline() {
	c.Pipeline = pipeline.NewService(pipeline.Deps{
		Notebooks:       c.NotebookRepo,
		Notes:           c.NoteRepo,
		Charts:          c.ChartRepo,
		Recommender:     c.Collaborator,
		Deriver:         c.Collaborator,
		Selector:        selector.NewSelector(c.Collaborator, c.Logger),
		Aggregator:      aggregate.NewEngine(),
		Gates:           c.Config.Gates,
		Logger:          c.Logger,
		MaxConcurrent:   c.Config.Pipeline.MaxConcurrentRuns,
		NotesSampleSize: c.Config.Pipeline.NotesSampleSize,
	})
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
