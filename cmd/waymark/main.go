package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	waymark "github.com/claude/waymark"
	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/config"
	waymcp "github.com/claude/waymark/internal/mcp"
	"github.com/claude/waymark/internal/server"
	"github.com/claude/waymark/internal/snapshot"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	// Best-effort .env loading; absence is fine.
	_ = godotenv.Load()

	// In MCP stdio mode stdout belongs to the protocol.
	logOut := os.Stdout
	if *mcpMode {
		logOut = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Waymark starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open the snapshot medium
	var medium snapshot.Medium
	switch cfg.Storage.Driver {
	case "file":
		medium, err = snapshot.OpenFileMedium(cfg.Storage.Path)
	default:
		medium, err = snapshot.OpenSQLiteMedium(cfg.Storage.Path)
	}
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer medium.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)

	adapter := snapshot.NewAdapter(medium, log)

	// The hub carries view and navigation requests to connected browsers.
	hub := server.NewViewHub()
	coord := app.New(adapter, hub, hub, cfg.Map.DefaultZoom, log)

	ctx := context.Background()
	if err := coord.Start(ctx); err != nil {
		log.Error("failed to load workouts", "error", err)
		os.Exit(1)
	}

	if *mcpMode {
		log.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(waymcp.New(coord, Version, log)); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := server.New(coord, hub, cfg.Map.DefaultZoom, log)

	// Serve embedded frontend
	webDist, err := fs.Sub(waymark.WebFS, "web/dist")
	if err != nil {
		log.Error("failed to load embedded frontend", "error", err)
		os.Exit(1)
	}
	srv.SetFrontend(webDist)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "local (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
