package main

import (
	"fmt"

	"task-manager/internal/auth"
	"task-manager/internal/bot"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// openServices opens the database and wires every service on top of it.
// The returned func closes the database.
func openServices(cfg config.Config) (bot.Services, func(), error) {
	hasher, err := auth.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return bot.Services{}, nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return bot.Services{}, nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return bot.Services{}, nil, fmt.Errorf("db: %w", err)
	}

	store := repository.NewStore(db)
	categories := service.NewCategoryService(store)
	services := bot.Services{
		Auth:       service.NewAuthService(store, hasher, auth.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)),
		Categories: categories,
		Tasks:      service.NewTaskService(store, categories),
		Filters:    service.NewFilterService(store, categories),
		Reminders:  service.NewReminderService(store),
	}
	return services, func() { _ = sqlDB.Close() }, nil
}
