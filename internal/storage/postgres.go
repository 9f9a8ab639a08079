package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"scrapbot/internal/bot"
	"scrapbot/internal/config"
)

// PostgresStorage is the internal booking ledger. The spreadsheet sink stays
// the system of record for operations staff; the ledger backs the Excel
// export and survives spreadsheet cleanups.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type bookingRow struct {
	ID                  int64     `db:"id"`
	BookingID           string    `db:"booking_id"`
	CustomerID          string    `db:"customer_id"`
	Name                string    `db:"name"`
	Phone               string    `db:"phone"`
	Email               string    `db:"email"`
	Address             string    `db:"address"`
	Pincode             string    `db:"pincode"`
	TimeSlot            string    `db:"time_slot"`
	Material            string    `db:"material"`
	Quantity            float64   `db:"quantity"`
	PricePerUnit        float64   `db:"price_per_unit"`
	EstimatedTotalPrice float64   `db:"estimated_total_price"`
	AgentName           string    `db:"agent_name"`
	AgentContact        string    `db:"agent_contact"`
	AgentVehicle        string    `db:"agent_vehicle"`
	CreatedAt           time.Time `db:"created_at"`
}

func NewPostgresStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{db: db, logger: logger}, nil
}

func (s *PostgresStorage) SaveBooking(ctx context.Context, rec bot.BookingRecord) error {
	const query = `
        INSERT INTO bookings (
            booking_id, customer_id, name, phone, email, address, pincode,
            time_slot, material, quantity, price_per_unit,
            estimated_total_price, agent_name, agent_contact, agent_vehicle,
            created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `

	_, err := s.db.ExecContext(ctx, query,
		rec.BookingID,
		rec.CustomerID,
		rec.Name,
		rec.Phone,
		rec.Email,
		rec.Address,
		rec.Pincode,
		rec.TimeSlot,
		rec.Material,
		rec.Quantity,
		rec.PricePerUnit,
		rec.EstimatedTotalPrice,
		rec.AgentName,
		rec.AgentContact,
		rec.AgentVehicle,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// ExportBookingsExcel renders the whole ledger as an xlsx workbook.
func (s *PostgresStorage) ExportBookingsExcel(ctx context.Context) (*bytes.Buffer, error) {
	const query = `SELECT * FROM bookings ORDER BY created_at DESC`
	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"Booking ID", "Customer ID", "Name", "Phone", "Email", "Address",
		"Pincode", "Time Slot", "Material", "Quantity (KG)", "Price/Unit",
		"Estimated Total", "Agent", "Agent Contact", "Agent Vehicle",
		"Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheet, "A1", "P1", style)

	for row, b := range rows {
		data := []interface{}{
			b.BookingID,
			b.CustomerID,
			b.Name,
			b.Phone,
			b.Email,
			b.Address,
			b.Pincode,
			b.TimeSlot,
			b.Material,
			b.Quantity,
			b.PricePerUnit,
			b.EstimatedTotalPrice,
			b.AgentName,
			b.AgentContact,
			b.AgentVehicle,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
