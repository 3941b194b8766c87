package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/bot"
	"task-manager/internal/config"
	"task-manager/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long:  "Runs the Telegram bot and the daily reminder job",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		services, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		telegramBot, err := bot.New(cfg.TelegramToken, services)
		if err != nil {
			return err
		}

		scheduler := service.NewSchedulerService(time.Local)
		entryID, err := scheduler.ScheduleDaily(cfg.ReminderTime, func() {
			jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDueReminders(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("reminders: %v", err)
			}
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("[info] reminders scheduled daily at %s, next run %s", cfg.ReminderTime, scheduler.Next(entryID).Format(time.RFC1123))

		log.Println("Task manager bot started.")
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Println("Shutdown complete.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
