// Command usersctl runs operator tasks against the user database.
//
// Usage:
//
//	usersctl createsuperuser [-email addr] [-username name] [-gender male|female|divers] [-noinput]
//
// Database and storage settings are read the same way the server reads
// them (config file, flags such as -d, environment).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userservice/internal/admin"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/config"
	"github.com/dmitrijs2005/userservice/internal/server/filestore"
	"github.com/dmitrijs2005/userservice/internal/server/media"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/server/services"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "createsuperuser" {
		fmt.Fprintln(os.Stderr, "usage: usersctl createsuperuser [-email addr] [-username name] [-gender g] [-noinput]")
		os.Exit(2)
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	opts, err := admin.ParseSuperuserFlags(os.Args[2:])
	if err != nil {
		return fmt.Errorf("createsuperuser: %w", err)
	}

	if opts.NoInput {
		opts.Password = os.Getenv("USERSCTL_PASSWORD")
	}

	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	storage, err := filestore.New(ctx, cfg.FileStore())
	if err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}

	processor := media.NewProcessor(storage, cfg.ImageSize, cfg.ImageSize, cfg.ImageQuality)
	profiles := services.NewProfileService(rm, storage, processor, logger)
	accounts := services.NewAccountService(db, rm, profiles, logger)

	_, err = admin.CreateSuperuser(ctx, accounts, bufio.NewReader(os.Stdin), os.Stdout, opts)
	return err
}
