package integration

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/Songmu/retry"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/incidentd/pkg/audit"
	"github.com/doodlesbykumbi/incidentd/pkg/config"
	"github.com/doodlesbykumbi/incidentd/pkg/logging"
	"github.com/doodlesbykumbi/incidentd/pkg/server"
	"github.com/doodlesbykumbi/incidentd/pkg/server/endpoints"
)

const serverPort = 18080

// ServerInstance represents a running incidents server
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	cancel        context.CancelFunc
	serverProcess *exec.Cmd
}

// startInlineServer starts the server in-process (no binary needed)
func startInlineServer(db *gorm.DB) (*ServerInstance, error) {
	cfg := config.Default()
	cfg.BindAddress = "127.0.0.1"
	cfg.Port = serverPort

	logger, _ := logging.New("warn", "text", os.Stderr)
	s := server.NewServer(db, cfg, logger, audit.NewLogger(io.Discard, nil, logger), "integration")
	s.AccessLog = io.Discard
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on %s: %w", cfg.Addr(), err)
	}

	go func() {
		_ = s.Serve(listener)
	}()

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://" + cfg.Addr(),
	}
	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServer starts the incidentctl server binary
func startBinaryServer(binaryPath, dbURL string) (*ServerInstance, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since we already ran migrations in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(serverPort))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"INCIDENTS_AUDIT_ENABLED=false",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", serverPort),
		cancel:        cancel,
		serverProcess: cmd,
	}
	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}

// waitForServer polls the status endpoint until it returns 200 or timeout
// elapses.
func waitForServer(serverURL string, timeout time.Duration) error {
	const interval = 100 * time.Millisecond
	client := &http.Client{Timeout: 2 * time.Second}

	return retry.Retry(uint(timeout/interval), interval, func() error {
		resp, err := client.Get(serverURL + "/")
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil
	})
}
