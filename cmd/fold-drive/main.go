// ABOUTME: Entry point for the fold-drive personal file-storage server
// ABOUTME: Provides serve, init, token and health subcommands

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/fold-drive/internal/api"
	"github.com/2389/fold-drive/internal/auth"
	"github.com/2389/fold-drive/internal/blob"
	"github.com/2389/fold-drive/internal/config"
	"github.com/2389/fold-drive/internal/registry"
	"github.com/2389/fold-drive/internal/store"
	"github.com/2389/fold-drive/internal/suggest"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  __       _     _       _      _
 / _| ___ | | __| |   __| |_ __(_)_   _____
| |_ / _ \| |/ _' |  / _' | '__| \ \ / / _ \
|  _| (_) | | (_| | | (_| | |  | |\ V /  __/
|_|  \___/|_|\__,_|  \__,_|_|  |_| \_/ \___|
`

// getConfigPath returns the path to the config file.
// Priority: FOLD_DRIVE_CONFIG env var > ./fold-drive.yaml
func getConfigPath() string {
	if envPath := os.Getenv("FOLD_DRIVE_CONFIG"); envPath != "" {
		return envPath
	}
	return "fold-drive.yaml"
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: fold-drive <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                  Start the file-storage server")
		fmt.Println("  init                   Create a starter config file")
		fmt.Println("  token [--subject S]    Mint a bearer token for API access")
		fmt.Println("  health                 Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "token":
		err = runToken(os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Blobs:    %s\n", cfg.Blob.Backend)
	fmt.Println()

	logger.Info("starting fold-drive",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
		"blob_backend", cfg.Blob.Backend,
	)

	// Metadata store
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Binary object store
	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	// Optional AI note suggestions; failures disable the feature, never
	// the server
	var suggester api.Suggester
	if cfg.Suggest.Enabled {
		s, err := suggest.New(ctx, suggest.Config{
			APIKey:  cfg.Suggest.APIKey,
			BaseURL: cfg.Suggest.BaseURL,
			Model:   cfg.Suggest.Model,
		})
		if err != nil {
			logger.Warn("suggestion service unavailable, continuing without it", "error", err)
		} else {
			suggester = s
		}
	}

	reg := registry.New(st, blobs)
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	server := api.NewServer(cfg.Server.HTTPAddr, api.New(reg, blobs, suggester), verifier)

	return server.Run(ctx)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "minio":
		return blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.Blob.Minio.Endpoint,
			AccessKey: cfg.Blob.Minio.AccessKey,
			SecretKey: cfg.Blob.Minio.SecretKey,
			Bucket:    cfg.Blob.Minio.Bucket,
			UseSSL:    cfg.Blob.Minio.UseSSL,
		})
	default:
		return blob.NewDiskStore(cfg.Blob.Dir)
	}
}

const starterConfig = `server:
  http_addr: 127.0.0.1:8080

database:
  path: drive.db

blob:
  backend: disk
  dir: uploads

auth:
  jwt_secret: %s

# suggest:
#   enabled: true
#   api_key: ${OPENAI_API_KEY}
#   model: gpt-4o-mini

logging:
  level: info
  format: text
`

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	// Fresh random secret so a default install is never tokenless-open
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	content := fmt.Sprintf(starterConfig, secret)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("Run 'fold-drive token' to mint an API token, then 'fold-drive serve'.")
	return nil
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "owner", "token subject")
	expiry := fs.Duration("expiry", 30*24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	token, err := verifier.Generate(*subject, *expiry)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
