// Command rootuser creates the bootstrap root account in the configured
// database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/auth"
	"github.com/Skotchmaster/crud_template/internal/config"
	"github.com/Skotchmaster/crud_template/internal/db"
	"github.com/Skotchmaster/crud_template/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "rootuser")

	ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logger.Error("root_user_create_failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.FromContext(ctx)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.Migrate(ctx, gdb); err != nil {
		return err
	}

	svc := auth.NewService(auth.NewPasswordHasher(cfg.AppSecret, auth.DefaultArgon2Params), nil)
	u, err := svc.CreateRootUser(ctx, gdb, cfg.RootPassword)
	switch {
	case errors.Is(err, apperror.ErrConflict):
		logger.Warn("root_user_exists", "username", auth.RootUsername)
		return nil
	case err != nil:
		return err
	}

	logger.Info("root_user_created", "user_id", u.ID, "username", u.Username)
	return nil
}
