package main

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	serverBinary       = "vidgrab-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// isServerRunning checks if the server at baseURL answers its health check
func isServerRunning(baseURL string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findServerBinary looks next to the CLI binary, then on PATH, then in the
// usual install locations
func findServerBinary() (string, error) {
	var candidates []string
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), serverBinary))
	}
	if p, err := exec.LookPath(serverBinary); err == nil {
		candidates = append(candidates, p)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "go", "bin", serverBinary),
			filepath.Join(home, ".local", "bin", serverBinary))
	}
	candidates = append(candidates, "/usr/local/bin/"+serverBinary, "/usr/bin/"+serverBinary)

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s binary not found", serverBinary)
}

// serverEnv points an auto-started server at the host and port of baseURL
func serverEnv(baseURL string) ([]string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	env := os.Environ()
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil {
		// No explicit port, the server default applies
		return env, nil
	}
	if host != "" {
		env = append(env, "VIDGRAB_SERVER_HOST="+host)
	}
	return append(env, "VIDGRAB_SERVER_PORT="+port), nil
}

// startServerBackground starts the server as a detached background process
func startServerBackground(baseURL string) error {
	serverPath, err := findServerBinary()
	if err != nil {
		return err
	}
	env, err := serverEnv(baseURL)
	if err != nil {
		return err
	}

	cmd := exec.Command(serverPath)
	cmd.Env = env
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Reap the child if it exits while the CLI is still running
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// waitForServerReady polls the server until it's ready or timeout
func waitForServerReady(baseURL string) error {
	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		if isServerRunning(baseURL) {
			return nil
		}
		time.Sleep(serverPollInterval)
	}
	return fmt.Errorf("server did not start within %v", serverStartTimeout)
}

// ensureServerRunning checks if server is running, starts it if not
func ensureServerRunning(out io.Writer) error {
	if isServerRunning(serverURL) {
		return nil
	}

	fmt.Fprintln(out, "Server not running, starting...")

	if err := startServerBackground(serverURL); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	if err := waitForServerReady(serverURL); err != nil {
		return err
	}

	fmt.Fprintln(out, "Server started successfully")
	return nil
}
