package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/brightpost/draftforge/internal/api"
	"github.com/brightpost/draftforge/internal/config"
	"github.com/brightpost/draftforge/internal/diversity"
	"github.com/brightpost/draftforge/internal/genconfig"
	"github.com/brightpost/draftforge/internal/generator"
	"github.com/brightpost/draftforge/internal/learning"
	"github.com/brightpost/draftforge/internal/profile"
	"github.com/brightpost/draftforge/internal/provider"
	"github.com/brightpost/draftforge/internal/sources"
	"github.com/brightpost/draftforge/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the draftforge server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running draftforge server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show draftforge system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "draftforge.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "draftforge version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Ensure the API bearer token exists in the platform secret store.
	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}

	// Refuse to start a second instance.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Domain services share the one store.
	profileMgr := profile.NewManager(st)
	configSvc := genconfig.NewService(st)
	learningEngine := learning.NewEngine(st)
	diversityEngine := diversity.NewEngine(st)
	newsFetcher := sources.NewNewsFetcher(cfg.News.Timeout(), logger)

	// Vendors without credentials stay out of the registry so resolving
	// their models reports "not configured" instead of an HTTP 401.
	var openaiClient, anthropicClient provider.Provider
	if cfg.Provider.OpenAIAPIKey != "" {
		openaiClient = provider.NewOpenAIClientWithBaseURL(cfg.Provider.OpenAIAPIKey, cfg.Provider.OpenAIBaseURL)
	}
	if cfg.Provider.AnthropicAPIKey != "" {
		anthropicClient = provider.NewAnthropicClientWithBaseURL(cfg.Provider.AnthropicAPIKey, cfg.Provider.AnthropicBaseURL)
	}
	registry := provider.NewRegistry(openaiClient, anthropicClient)

	engine := generator.NewEngine(generator.Options{
		Profiles:       profileMgr,
		Config:         configSvc,
		Learning:       learningEngine,
		Diversity:      diversityEngine,
		History:        st,
		Models:         registry,
		News:           newsFetcher,
		AttemptTimeout: cfg.Generation.Timeout(),
		MaxRetries:     cfg.Generation.MaxRetries,
		Logger:         logger,
	})

	handler := api.NewAppHandler(api.AppDeps{
		Store:     st,
		Profiles:  profileMgr,
		Config:    configSvc,
		Learning:  learningEngine,
		Generator: engine,
		Token:     apiToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP over stdio shares the engine and store.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:     st,
		Generator: engine,
		Learning:  learningEngine,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "draftforge listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("draftforge is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop draftforge (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to draftforge (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.Provider.OpenAIAPIKey != "" {
		printStatus("OpenAI", "key configured")
	} else {
		printStatus("OpenAI", "no key")
	}
	if cfg.Provider.AnthropicAPIKey != "" {
		printStatus("Anthropic", "key configured")
	} else {
		printStatus("Anthropic", "no key")
	}

	// Show the active generation settings and learning confidence when the
	// server is up.
	apiToken, tokenErr := config.GetAPIToken(config.NewKeychain())
	if running && tokenErr == nil {
		if cfgResp, err := apiGet(client, serverURL+"/admin/config", apiToken); err == nil {
			var gen struct {
				TextModel      string `json:"text_model"`
				EnableNewsMode bool   `json:"enable_news_mode"`
			}
			if json.NewDecoder(cfgResp.Body).Decode(&gen) == nil {
				printStatus("Text model", "%s", gen.TextModel)
				printStatus("News mode", "%t", gen.EnableNewsMode)
			}
			cfgResp.Body.Close()
		}
		if sigResp, err := apiGet(client, serverURL+"/v1/learning-profile", apiToken); err == nil {
			var sig struct {
				TotalFeedback int     `json:"total_feedback"`
				Confidence    float64 `json:"confidence"`
			}
			if json.NewDecoder(sigResp.Body).Decode(&sig) == nil {
				printStatus("Feedback", "%d records (confidence %.2f)", sig.TotalFeedback, sig.Confidence)
			}
			sigResp.Body.Close()
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return client.Do(req)
}
