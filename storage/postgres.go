package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"propwatch/models"
)

// PostgresSink keeps the record set in a single table. Save replaces the
// whole set inside one transaction, which keeps the contents identical to
// what the CSV sink would hold.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(ctx context.Context, connString string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	sink := &PostgresSink{pool: pool}
	if err := sink.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return sink, nil
}

func (s *PostgresSink) Close() {
	s.pool.Close()
}

func (s *PostgresSink) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS property_records (
			id UUID PRIMARY KEY,
			position INTEGER NOT NULL,
			property_id TEXT,
			address TEXT,
			description TEXT,
			bedrooms INTEGER,
			bathrooms INTEGER,
			property_type TEXT,
			area_sqft INTEGER,
			leasehold BOOLEAN,
			price INTEGER,
			agent TEXT,
			agent_contact TEXT,
			date_listed TEXT,
			listing_url TEXT
		)`)
	return err
}

func (s *PostgresSink) Load(ctx context.Context) ([]models.PropertyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT property_id, address, description, bedrooms, bathrooms, property_type,
			area_sqft, leasehold, price, agent, agent_contact, date_listed, listing_url
		FROM property_records ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PropertyRecord
	for rows.Next() {
		var rec models.PropertyRecord
		if err := rows.Scan(&rec.PropertyID, &rec.Address, &rec.Description,
			&rec.Bedrooms, &rec.Bathrooms, &rec.PropertyType, &rec.AreaSqFt,
			&rec.Leasehold, &rec.Price, &rec.Agent, &rec.AgentContact,
			&rec.DateListed, &rec.ListingURL); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresSink) Save(ctx context.Context, records []models.PropertyRecord) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM property_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	for i, rec := range records {
		_, err := tx.Exec(ctx, `
			INSERT INTO property_records (id, position, property_id, address, description,
				bedrooms, bathrooms, property_type, area_sqft, leasehold, price,
				agent, agent_contact, date_listed, listing_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			uuid.New(), i, rec.PropertyID, rec.Address, rec.Description,
			rec.Bedrooms, rec.Bathrooms, rec.PropertyType, rec.AreaSqFt,
			rec.Leasehold, rec.Price, rec.Agent, rec.AgentContact,
			rec.DateListed, rec.ListingURL)
		if err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}
