package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claimbridge/claimbridge/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	transportHTTP = "http"
	transportUDS  = "uds"
)

type cliConfig struct {
	Transport string `json:"transport"`
	Server    string `json:"server"`
	Socket    string `json:"socket"`
}

// clientConfig resolves the transport from the root flags. The socket falls
// back to the server's configured rpc_socket so both sides agree by default.
func clientConfig(c *cli.Command) (cliConfig, error) {
	cfg := cliConfig{
		Transport: strings.ToLower(strings.TrimSpace(c.String("transport"))),
		Server:    c.String("server"),
		Socket:    c.String("socket"),
	}
	switch cfg.Transport {
	case "":
		cfg.Transport = transportUDS
	case transportHTTP, transportUDS:
	default:
		return cliConfig{}, fmt.Errorf("unknown transport %q, want http or uds", cfg.Transport)
	}
	if cfg.Socket == "" {
		serverCfg, err := config.Load(c.String("config"))
		if err != nil {
			return cliConfig{}, err
		}
		cfg.Socket = serverCfg.Server.RPCSocket
	}
	return cfg, nil
}

type apiClient struct {
	httpClient *http.Client
	server     string
}

func newAPIClient(server string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		server:     strings.TrimRight(server, "/"),
	}
}

// apiError carries the server's {"error": ...} message when there is one.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

func (c *apiClient) request(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		var envelope struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(payload))
		if json.Unmarshal(payload, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
