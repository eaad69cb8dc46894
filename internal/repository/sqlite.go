// Package repository persists leads captured by the public site.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/orivyx/orivyx-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Schema is the leads table DDL, applied idempotently at startup.
//
//go:embed migrations/001_initial_schema.sql
var Schema string

// SQLiteRepository implements lead storage using SQLite.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// RunMigrations runs database migrations.
func (r *SQLiteRepository) RunMigrations(migrationSQL string) error {
	_, err := r.db.Exec(migrationSQL)
	return err
}

// CreateLead stores a new lead. ID and CreatedAt are assigned here when empty.
func (r *SQLiteRepository) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO leads (id, name, email, phone, company, role, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.Role,
		lead.Message,
		lead.CreatedAt,
	)

	return err
}

// ListLeads returns all leads, newest first.
func (r *SQLiteRepository) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	var leads []*models.Lead
	query := `SELECT * FROM leads ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &leads, query)
	return leads, err
}

// GetLead returns one lead by id.
func (r *SQLiteRepository) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	query := `SELECT * FROM leads WHERE id = ?`

	err := r.db.GetContext(ctx, &lead, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &lead, nil
}

// DeleteLead removes a lead. Deleting an unknown id returns ErrNotFound.
func (r *SQLiteRepository) DeleteLead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
