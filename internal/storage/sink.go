package storage

import (
	"context"

	"go.uber.org/zap"

	"scrapbot/internal/bot"
)

// RecordingSink forwards a booking to the real sink and, on success, records
// it in the ledger. Ledger errors are logged only: the dialogue outcome is
// decided by the spreadsheet submission alone.
type RecordingSink struct {
	next   bot.BookingSink
	ledger *PostgresStorage
	logger *zap.Logger
}

func NewRecordingSink(next bot.BookingSink, ledger *PostgresStorage, logger *zap.Logger) *RecordingSink {
	return &RecordingSink{next: next, ledger: ledger, logger: logger}
}

func (s *RecordingSink) Submit(ctx context.Context, rec bot.BookingRecord) error {
	if err := s.next.Submit(ctx, rec); err != nil {
		return err
	}

	if err := s.ledger.SaveBooking(ctx, rec); err != nil {
		s.logger.Error("Failed to record booking in ledger",
			zap.String("booking_id", rec.BookingID),
			zap.Error(err))
	}
	return nil
}
