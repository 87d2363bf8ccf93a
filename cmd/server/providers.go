// File: cmd/server/providers.go
package main

import (
	"log"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/calendar"
	"motormate_backend/internal/config"
	"motormate_backend/internal/platform/database"
)

// provideCalendarSigner builds the signer for calendar download link tokens.
func provideCalendarSigner(cfg *config.Config) *calendar.Signer {
	return calendar.NewSigner(cfg.CalendarLinkSecret, cfg.CalendarLinkTTL)
}

// provideCalendarService wires the calendar service against the booking
// repository and the configured public base URL.
func provideCalendarService(bookings booking.Repository, signer *calendar.Signer, cfg *config.Config, logger *zap.Logger) *calendar.Service {
	return calendar.NewService(bookings, signer, cfg.PublicBaseURL, logger)
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
