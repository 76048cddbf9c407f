package main

import (
	"alcyxob/fitgen/internal/api"
	"alcyxob/fitgen/internal/config"
	logctx "alcyxob/fitgen/internal/pkg/log"
	"alcyxob/fitgen/internal/service"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "fitgen",
		Short:         "Questionnaire-driven training program generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configDir)
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd, configDir)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create indexes or apply schema migrations for the configured database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStores(cmd, configDir, func(ctx context.Context, env *cliEnv) error {
					fmt.Fprintf(cmd.OutOrStdout(), "database %q is up to date\n", env.cfg.Database.Driver)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "programs <session-id>",
			Short: "List the generated programs of a session, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStores(cmd, configDir, func(ctx context.Context, env *cliEnv) error {
					programs, err := env.svc.ListPrograms(ctx, args[0])
					if err != nil {
						return err
					}
					if len(programs) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "no programs")
						return nil
					}
					sort.SliceStable(programs, func(i, j int) bool {
						return programs[i].CreatedAt.After(programs[j].CreatedAt)
					})
					for _, p := range programs {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d chars\n",
							p.ID, p.CreatedAt.Format(time.RFC3339), len([]rune(p.Content)))
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "generate <session-id>",
			Short: "Generate a new program for a complete session and print it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStores(cmd, configDir, func(ctx context.Context, env *cliEnv) error {
					program, err := env.svc.GenerateProgram(ctx, args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "# program %s\n\n%s\n", program.ID, program.Content)
					return nil
				})
			},
		},
	)
	return root
}

func loadConfigAndLogger(cmd *cobra.Command, configDir string) (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return cfg, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logctx.New(cmd.ErrOrStderr(), cfg.Log.Level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runServe(cmd *cobra.Command, configDir string) error {
	cfg, logger, err := loadConfigAndLogger(cmd, configDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logctx.Into(ctx, logger)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("closing database failed", slog.Any("err", err))
		}
	}()

	svc, err := newProfileService(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewRouter(svc, cfg.CORS.AllowedOrigins, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

type cliEnv struct {
	cfg config.Config
	svc service.ProfileService
}

// withStores runs fn with an opened database and a wired service.
func withStores(cmd *cobra.Command, configDir string, fn func(ctx context.Context, env *cliEnv) error) error {
	cfg, logger, err := loadConfigAndLogger(cmd, configDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx = logctx.Into(ctx, logger)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.close()

	svc, err := newProfileService(ctx, cfg, st, logger)
	if err != nil {
		return err
	}
	return fn(ctx, &cliEnv{cfg: cfg, svc: svc})
}
