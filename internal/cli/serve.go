package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"xiaoliu/internal/config"
	"xiaoliu/internal/infrastructure"
	apphttp "xiaoliu/internal/interfaces/http"
	"xiaoliu/internal/repository"
	"xiaoliu/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service (and the Telegram bot when a token is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(viper.GetViper())

	commands := repository.NewCommandRepository()
	claude := infrastructure.NewClaudeClient(infrastructure.ClaudeConfig{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.ClaudeAPIURL,
		Model:    cfg.ClaudeModel,
	})
	service := usecases.NewMessageService(commands, claude)

	limiter := infrastructure.NewMessageRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	if cfg.APIKey() == "" {
		log.Warn().Msg("CLAUDE_API_KEY is not set; free-form messages will get a configuration notice")
	}

	botDone := make(chan struct{})
	if cfg.TelegramBotToken != "" {
		client, err := infrastructure.NewTelegramClient(cfg.TelegramBotToken)
		if err != nil {
			return err
		}
		greeting, _ := commands.CannedResponse(repository.TagGreeting)
		bot := infrastructure.NewTelegramBot(infrastructure.TelegramBotConfig{
			Client:   client,
			Router:   service,
			Limiter:  limiter,
			Greeting: greeting,
		})
		go func() {
			defer close(botDone)
			bot.Run(ctx)
		}()
	} else {
		close(botDone)
		log.Info().Msg("TELEGRAM_BOT_TOKEN is not set; telegram adapter disabled")
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		log.Warn().Str("mode", cfg.GinMode).Msg("unknown GIN_MODE, using release")
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := apphttp.NewEngine(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	apphttp.SetupRoutes(r, service, apphttp.NewMiddleware(limiter))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err, ok := <-errCh:
		if ok {
			stop()
			<-botDone
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	<-botDone
	log.Info().Msg("stopped")
	return nil
}
