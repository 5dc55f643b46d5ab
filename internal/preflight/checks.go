package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"phototagger/internal/config"
	"phototagger/internal/services/clip"
)

const embeddingCheckTimeout = 30 * time.Second

// CheckEmbedding verifies the embedding service answers for the configured
// model. It uses a single attempt.
func CheckEmbedding(ctx context.Context, cfg *config.Config) Result {
	const name = "Embedding service"
	if cfg == nil || cfg.Embedding.BaseURL == "" {
		return Result{Name: name, Detail: "base_url missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, embeddingCheckTimeout)
	defer cancel()

	client := clip.NewFromConfig(cfg, clip.WithRetryMaxAttempts(1))
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeEmbeddingError(cfg.Embedding.BaseURL, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (model %s reachable)", cfg.Embedding.BaseURL, client.Model())}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeEmbeddingError(baseURL string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s (health check timed out)", baseURL)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("%s (health check timed out, service unreachable)", baseURL)
	}
	return fmt.Sprintf("%s (%v)", baseURL, err)
}
