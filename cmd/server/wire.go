// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"motormate_backend/internal/app"
	"motormate_backend/internal/booking"
	"motormate_backend/internal/calendar"
	"motormate_backend/internal/config"
	"motormate_backend/internal/contact"
	"motormate_backend/internal/filestorage"
	"motormate_backend/internal/firebase"
	"motormate_backend/internal/garage"
	"motormate_backend/internal/identity"
	"motormate_backend/internal/jobs"
	"motormate_backend/internal/notification"
	"motormate_backend/internal/platform/database"
	platformElasticsearch "motormate_backend/internal/platform/elasticsearch"
	"motormate_backend/internal/platform/logger"
	"motormate_backend/internal/profile"
	"motormate_backend/internal/route"
	"motormate_backend/internal/vehicle"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		platformElasticsearch.NewClient,
		provideCleanup,

		// Firebase
		firebase.NewService,
		wire.Bind(new(profile.ClaimsWriter), new(*firebase.Service)),
		wire.Bind(new(identity.FirebaseAuthority), new(*firebase.Service)),

		// Profile resolution
		profile.NewGORMRepository,
		profile.NewResolver,
		profile.NewService,
		profile.NewHandler,

		// Identity / session
		identity.NewService,
		identity.NewHandler,

		// Route decisions
		route.NewHandler,

		// Garage catalog
		garage.NewGORMRepository,
		garage.NewService,
		garage.NewHandler,

		// Vehicles and documents
		filestorage.NewS3Service,
		wire.Bind(new(filestorage.Service), new(*filestorage.S3Service)),
		vehicle.NewGORMRepository,
		vehicle.NewService,
		vehicle.NewHandler,

		// Bookings
		booking.NewGORMRepository,
		wire.Bind(new(booking.GarageDirectory), new(garage.Repository)),
		wire.Bind(new(booking.CarRegistry), new(vehicle.Repository)),
		wire.Bind(new(booking.Notifier), new(*notification.Service)),
		booking.NewService,
		booking.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		// Calendar export
		provideCalendarSigner,
		provideCalendarService,
		wire.Bind(new(calendar.BookingSource), new(booking.Repository)),
		calendar.NewHandler,

		// Contact form
		contact.NewService,
		contact.NewHandler,

		// Jobs
		jobs.NewBookingReminderJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
