package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tablegate/tablegate/pkg/config"
	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/db"
	"github.com/tablegate/tablegate/pkg/server"
	"github.com/tablegate/tablegate/pkg/server/endpoints"
	"github.com/tablegate/tablegate/pkg/token"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the tablegate application server",
	Long: `Run the tablegate application server.

Requires the environment variables TABLEGATE_DATA_KEY, TABLEGATE_JWT_SECRET
and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required environment variables first (fail fast)
		cipher, err := crypto.FromEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		tokenSecret, err := token.SecretFromEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Info("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(database, cfg, cipher, tokenSecret, host, port)

		endpoints.RegisterAll(s)

		go watchConfig(cfg.ConfigFilePath())

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start()
		}()

		log.Infof("Running server at http://%s:%s...", host, port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		for {
			select {
			case err := <-errCh:
				log.Fatal(err)
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					if err := config.Reload(); err != nil {
						log.WithError(err).Warn("Config reload failed")
					} else {
						log.Info("Configuration reloaded")
					}
					continue
				}

				log.Infof("Received %s, shutting down...", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := s.Shutdown(ctx); err != nil {
					log.WithError(err).Error("Shutdown failed")
					os.Exit(1)
				}
				return
			}
		}
	},
}

// watchConfig hot-reloads the config file when it changes on disk. Editors
// often replace the file instead of writing in place, so the watch is
// re-armed after rename and remove events.
func watchConfig(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("Config watch unavailable")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		log.WithError(err).Warn("Config watch unavailable")
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := config.Reload(); err != nil {
					log.WithError(err).Warn("Config reload failed")
				} else {
					log.WithField("file", path).Info("Configuration reloaded")
				}
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove) != 0 {
				time.Sleep(100 * time.Millisecond)
				_ = watcher.Add(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("Config watch error")
		}
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
