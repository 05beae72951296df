// Command init-admin creates the first admin account from a terminal,
// using the same rules as POST /api/auth/init-admin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/database"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/logging"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/service"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

func main() {
	email := flag.String("email", "", "admin email (prompted when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Env)

	in := bufio.NewReader(os.Stdin)
	if *email == "" {
		if *email, err = promptLine(in, os.Stdout, "Admin email"); err != nil {
			log.Fatal().Err(err).Msg("read email")
		}
	}
	password, err := promptPassword(os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("read password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := repository.NewUserRepo(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes")
	}

	auth := service.NewAuthService(cfg, users, utils.NewTokenSigner(cfg), nil, service.NewValidator(), &log)
	user, err := auth.InitAdmin(ctx, service.InitAdminInput{
		Secret:   cfg.AdminSecret,
		Email:    *email,
		Password: password,
	})
	if err != nil {
		ae := apperror.From(err)
		fmt.Fprintf(os.Stderr, "%s: %s\n", ae.Code, ae.Message)
		for _, v := range ae.Errors {
			fmt.Fprintln(os.Stderr, "  -", v)
		}
		os.Exit(1)
	}
	fmt.Printf("Admin user created: %s (%s)\n", user.Email, user.ID)
}
