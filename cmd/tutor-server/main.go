// Command tutor-server serves the derivative tutor over HTTP.
//
// Usage:
//
//	tutor-server serve --config config.yaml
//	tutor-server derive "sin(x^2)" --order 2
//	tutor-server tools
//
// Endpoints:
//
//	POST /derive   step-by-step derivative
//	POST /plot     sampled f and f' with a chart figure
//	POST /chat     tutor chat
//	POST /tool     execute a tool call
//	GET  /history  saved derivations
//	GET  /schema   tool schema for agent registration
//	GET  /health   health check
//	GET  /metrics  Prometheus metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/njchilds90/derivtutor"
	"github.com/njchilds90/derivtutor/expr"
	"github.com/njchilds90/derivtutor/history"
	"github.com/njchilds90/derivtutor/internal/config"
	"github.com/njchilds90/derivtutor/internal/metrics"
	"github.com/njchilds90/derivtutor/plot"
	"github.com/njchilds90/derivtutor/render"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tutor-server",
		Short: "Step-by-step derivative tutor",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	deriveCmd.Flags().String("var", "", "Differentiation variable (default from config)")
	deriveCmd.Flags().Int("order", 1, "Derivative order")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(toolsCmd)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openHistory returns the configured KV backend and a function releasing it.
func openHistory(cfg *config.Config) (history.KV, func() error, error) {
	noop := func() error { return nil }
	switch cfg.History.Backend {
	case "file":
		kv, err := history.NewFileKV(cfg.History.Path)
		return kv, noop, err
	case "sqlite":
		kv, err := history.NewSQLiteKV(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	}
	return history.NewMemoryKV(), noop, nil
}

// newTutor builds a Tutor from cfg. The returned function closes the history
// backend.
func newTutor(cfg *config.Config, logger *slog.Logger) (*derivtutor.Tutor, func() error, error) {
	kv, closeKV, err := openHistory(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	sampler := plot.NewSampler(expr.DefaultConfig())
	sampler.Points = cfg.Plot.Points
	t := derivtutor.New(
		derivtutor.WithLogger(logger),
		derivtutor.WithHistory(history.NewStore(kv, cfg.History.Capacity, logger)),
		derivtutor.WithSampler(sampler),
		derivtutor.WithMaxOrder(cfg.Tutor.MaxOrder),
		derivtutor.WithDefaultVariable(cfg.Tutor.Variable),
		derivtutor.WithPlotRange(cfg.Plot.XMin, cfg.Plot.XMax),
	)
	return t, closeKV, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		logger := newLogger(os.Stderr, cfg.Server.LogLevel)

		t, closeKV, err := newTutor(cfg, logger)
		if err != nil {
			return err
		}
		defer closeKV()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           newHandler(t, m, reg, cfg.Server.MaxBodyBytes, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()

		logger.Info("tutor server listening", "addr", cfg.Server.Addr, "history", cfg.History.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

var deriveCmd = &cobra.Command{
	Use:   "derive EXPR",
	Short: "Print the numbered steps of a derivative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		variable, _ := cmd.Flags().GetString("var")
		order, _ := cmd.Flags().GetInt("order")

		t := derivtutor.New(
			derivtutor.WithLogger(newLogger(os.Stderr, "error")),
			derivtutor.WithMaxOrder(cfg.Tutor.MaxOrder),
			derivtutor.WithDefaultVariable(cfg.Tutor.Variable),
		)
		out, err := t.Derive(cmd.Context(), derivtutor.Request{Expression: args[0], Variable: variable, Order: order})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.PlainText(out.Derivation.Steps))
		fmt.Fprintln(cmd.OutOrStdout(), "Result:", out.Result)
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the tool schema",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), derivtutor.ToolSpec())
	},
}
