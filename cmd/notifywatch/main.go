// Command notifywatch logs into a running server and tails notifications
// from a terminal, the same pull loop the web client runs. Useful for
// checking delivery without opening the UI.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/notify"
	"github.com/davinrkh/finbook/pkg/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func main() {
	_ = gotenv.Load()

	var (
		serverURL = flag.String("server", "http://localhost:8080", "server base URL")
		username  = flag.String("username", os.Getenv("FINBOOK_USERNAME"), "login username")
		password  = flag.String("password", os.Getenv("FINBOOK_PASSWORD"), "login password")
		interval  = flag.Duration("interval", 15*time.Second, "poll interval")
	)
	flag.Parse()

	logger, err := utils.NewDevelopmentLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *username == "" || *password == "" {
		logger.Fatal("username and password are required")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	token, err := login(client, *serverURL, *username, *password)
	if err != nil {
		logger.Fatal("Login failed", zap.Error(err))
	}
	logger.Info("Logged in", zap.String("server", *serverURL), zap.String("user", *username))

	fetch := func(ctx context.Context) ([]*entity.Notification, error) {
		return fetchNotifications(ctx, client, *serverURL, token)
	}
	alert := func(n *entity.Notification) {
		fmt.Printf("[%s] %s: %s\n", n.CreatedAt.Format(time.RFC3339), n.Type, n.Message)
	}

	poller := notify.NewPoller(fetch, alert, *interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	poller.Stop()
}

func login(client *http.Client, baseURL, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := client.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return "", err
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if data.Token == "" {
		return "", fmt.Errorf("login response contained no token")
	}
	return data.Token, nil
}

func fetchNotifications(ctx context.Context, client *http.Client, baseURL, token string) ([]*entity.Notification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/notifications", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}

	var notifications []*entity.Notification
	if err := json.Unmarshal(env.Data, &notifications); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return notifications, nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d)", resp.StatusCode)
	}
	if !env.Success {
		return nil, fmt.Errorf("server error (status %d): %s", resp.StatusCode, env.Error)
	}
	return &env, nil
}
