package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/apperr"
	"task-manager/internal/config"
	"task-manager/internal/model"
	"task-manager/internal/service"
	"task-manager/internal/validation"
)

var remindDate string

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Print reminders for the logged in user",
	Long:  "Prints reminders for pending tasks of the active user due on the given day, the day after, or three days later",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := parseRemindDate(remindDate)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		services, closeDB, err := openServices(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := cmd.Context()
		userID, err := services.Auth.ActiveUser(ctx)
		if errors.Is(err, apperr.ErrNoActiveUser) {
			return fmt.Errorf("nobody is logged in")
		}
		if err != nil {
			return err
		}

		notifier := service.NewLogNotifier(log.New(os.Stdout, "", 0))
		sent, err := services.Reminders.Dispatch(ctx, userID, today, notifier)
		if err != nil {
			return err
		}
		log.Printf("[info] %d reminders sent", sent)
		return nil
	},
}

// parseRemindDate reads DD-MM-YYYY; empty means today.
func parseRemindDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	normalized, err := validation.DueDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(model.DueDateLayout, normalized, time.Local)
}

func init() {
	remindCmd.Flags().StringVar(&remindDate, "date", "", "day to compute reminders for (DD-MM-YYYY), defaults to today")
	rootCmd.AddCommand(remindCmd)
}
