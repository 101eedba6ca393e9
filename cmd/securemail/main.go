// Package main is the entry point for the securemail CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/minseok/securemail/internal/config"
	"github.com/minseok/securemail/internal/mailer"
	"github.com/minseok/securemail/internal/transport"
)

func main() {
	app := &cli.App{
		Name:  "securemail",
		Usage: "send email with attachments over SMTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultPath,
				Usage: "path to the settings file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configPath := c.String("config")

	cfg, err := config.Load(configPath)
	if errors.Is(err, config.ErrTemplateCreated) {
		slog.Info("created settings template", "path", configPath)
		slog.Info("edit the settings file with your email settings and run again")
		return cli.Exit("", 1)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load configuration: %v", err), 1)
	}

	setupLogger(cfg.Logging.Level)

	fmt.Println("securemail - email sending utility")
	fmt.Printf("Sender email: %s\n", cfg.SenderEmail)

	req, err := promptRequest(cfg.SenderEmail)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read input: %v", err), 1)
	}

	m := mailer.New(transport.NewSMTP(cfg.SMTP.Server, cfg.SMTP.Port), slog.Default())

	result := m.Send(context.Background(), *req)
	if !result.OK {
		return cli.Exit("failed to send email, please check the errors above", 1)
	}

	return nil
}

// setupLogger configures the global slog logger with a console handler at
// the given level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
