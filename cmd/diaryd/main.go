package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	diary "github.com/goliatone/go-diary"
)

func main() {
	cfg := diary.ConfigFromEnv()
	if cfg.SigningKey == "" {
		log.Fatal("DIARY_SIGNING_KEY is required")
	}

	db, err := diary.OpenDB(diary.EnvOrDefault("DIARY_DSN", "file:diary.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := diary.Migrate(ctx, db); err != nil {
		log.Fatal(err)
	}

	repo := diary.NewRepositoryManager(db)
	repo.MustValidate()

	auther := diary.NewAuthenticator(repo.Users(), repo.RevokedTokens(), cfg)
	api := diary.NewAPI(auther, repo, cfg)
	app := diary.NewServer(api)

	// Startup purge is best-effort; a failed purge only delays cleanup.
	if n, err := repo.RevokedTokens().PurgeExpired(ctx, time.Now()); err != nil {
		log.Printf("startup purge failed: %v", err)
	} else if n > 0 {
		log.Printf("purged %d expired revocation entries", n)
	}

	go purgeLoop(ctx, repo, time.Hour)

	go func() {
		addr := diary.EnvOrDefault("DIARY_ADDR", ":8080")
		if err := app.Listen(addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func purgeLoop(ctx context.Context, repo diary.RepositoryManager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := repo.RevokedTokens().PurgeExpired(ctx, time.Now()); err != nil {
				log.Printf("purge failed: %v", err)
			} else if n > 0 {
				log.Printf("purged %d expired revocation entries", n)
			}
		}
	}
}
