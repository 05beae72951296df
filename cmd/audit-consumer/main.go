// Command audit-consumer drains admin audit events from RabbitMQ into the
// MySQL admin_audit table.  With -tail it prints recent entries for one
// admin instead and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/config"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/database"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/logging"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/queue"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/repository"
)

func main() {
	tail := flag.String("tail", "", "print recent audit entries for this admin user id and exit")
	limit := flag.Int("n", 20, "number of entries printed by -tail")
	flag.Parse()

	log := logging.New(os.Getenv("APP_ENV"))

	amqpCfg, dbCfg, err := config.LoadAudit()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	db, err := database.OpenAudit(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open audit db")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.MigrateAudit(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate audit db")
	}
	repo := repository.NewAuditRepo(db)

	if *tail != "" {
		entries, err := repo.ListByActor(ctx, *tail, *limit)
		if err != nil {
			log.Fatal().Err(err).Msg("list audit entries")
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tMETHOD\tPATH\tIP")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.OccurredAt.Format(time.RFC3339), e.Method, e.Path, e.RemoteIP)
		}
		_ = w.Flush()
		return
	}

	consumer := queue.NewConsumer(amqpCfg.URL, amqpCfg.AuditQueue, repo, &log)
	log.Info().Str("queue", amqpCfg.AuditQueue).Msg("audit-consumer starting")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("audit-consumer stopped")
	}
	log.Info().Msg("audit-consumer stopped")
}
