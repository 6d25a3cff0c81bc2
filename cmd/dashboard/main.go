package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/api"
	"github.com/tradedesk/godesk/internal/controlplane/server"
	"github.com/tradedesk/godesk/internal/infrastructure/websocket"
	"github.com/tradedesk/godesk/internal/services"
	"github.com/tradedesk/godesk/internal/tui"
	"github.com/tradedesk/godesk/pkg/config"
	"github.com/tradedesk/godesk/pkg/credstore"
	"github.com/tradedesk/godesk/pkg/logger"
	"github.com/tradedesk/godesk/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", "", "config file path (.yaml)")
	username := flag.String("username", "", "login username (or GODESK_USERNAME)")
	password := flag.String("password", "", "login password (or GODESK_PASSWORD)")
	flag.Parse()

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	creds, err := credstore.Open(cfg.StorePath)
	if err != nil {
		logrus.Errorf("open credential store: %v", err)
		os.Exit(1)
	}

	desk := services.NewDesk(services.DeskConfig{
		API:              api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout),
		Store:            creds,
		WSURL:            cfg.WSURL,
		EventLogCapacity: cfg.EventLogCapacity,
		ReconnectPolicy:  websocket.FixedDelay{Delay: 3 * time.Second, MaxAttempts: 20},
	})
	notifier := tui.NewNotifier()

	ctx := context.Background()
	if err := bringUp(ctx, desk, notifier, *username, *password); err != nil {
		logrus.Errorf("start session: %v", err)
		_ = creds.Close()
		os.Exit(1)
	}

	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(context.Context) { desk.Logout() })
	mgr.OnShutdown(func(context.Context) { _ = creds.Close() })

	if cfg.StatusListenAddr != "" {
		statusCtx, stopStatus := context.WithCancel(ctx)
		mgr.OnShutdown(func(context.Context) { stopStatus() })

		status, err := server.New(server.Config{ListenAddr: cfg.StatusListenAddr}, desk)
		if err != nil {
			logrus.Errorf("status api: %v", err)
			os.Exit(1)
		}
		go func() {
			if err := status.Run(statusCtx); err != nil {
				logrus.Errorf("status api stopped: %v", err)
			}
		}()
	}

	runErr := tui.Run(desk, notifier)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mgr.Shutdown(shutdownCtx)
	cancel()

	if runErr != nil {
		logrus.Errorf("dashboard: %v", runErr)
		os.Exit(1)
	}
}

// bringUp resumes a stored session when one exists, otherwise logs in
// with the provided credentials.
func bringUp(ctx context.Context, desk *services.Desk, notifier *tui.Notifier, username, password string) error {
	if session, ok := desk.Resume(); ok {
		if err := desk.Start(ctx, session, notifier); err == nil {
			logrus.Info("resumed stored session")
			return nil
		}
		logrus.Warn("stored session rejected, logging in again")
	}

	if username == "" {
		username = os.Getenv("GODESK_USERNAME")
	}
	if password == "" {
		password = os.Getenv("GODESK_PASSWORD")
	}
	if username == "" || password == "" {
		return fmt.Errorf("no stored session; pass -username/-password or set GODESK_USERNAME/GODESK_PASSWORD")
	}
	return desk.Login(ctx, username, password, notifier)
}
