package erpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/imroc/req/v3"

	"github.com/bricolab/fabsync/internal/version"
)

const rpcEndpoint = "/jsonrpc"

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Config holds the ERP connection settings. The API key doubles as the
// RPC password.
type Config struct {
	URL      string
	Database string
	Username string
	APIKey   string
}

// Client talks JSON-RPC to an Odoo instance. It implements the remote
// BOM-lookup capability consumed by the tree resolver; every lookup is a
// plain read and idempotent.
type Client struct {
	client *req.Client
	cfg    Config
	uid    int
	nextID atomic.Int64
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client := req.C().
		SetBaseURL(cfg.URL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent("FabSync/" + version.Version)

	return &Client{client: client, cfg: cfg}, nil
}

// Authenticate resolves the numeric user id for subsequent calls.
func (c *Client) Authenticate(ctx context.Context) error {
	var uid int
	err := c.call(ctx, "common", "authenticate",
		[]any{c.cfg.Database, c.cfg.Username, c.cfg.APIKey, map[string]any{}}, &uid)
	if err != nil {
		return err
	}
	if uid == 0 {
		return ErrAuthFailed
	}
	c.uid = uid
	return nil
}

func (c *Client) call(ctx context.Context, service, method string, args []any, out any) error {
	request := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	}

	var response rpcResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&request).
		SetSuccessResult(&response).
		Post(rpcEndpoint)

	operation := fmt.Sprintf("%s.%s", service, method)
	if err := handleAPIError(resp, err, operation); err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("erp rpc error: %s: %s (code %d)", operation, response.Error.Message, response.Error.Code)
	}

	if out != nil && len(response.Result) > 0 {
		if err := json.Unmarshal(response.Result, out); err != nil {
			return fmt.Errorf("decode rpc result: %s: %w", operation, err)
		}
	}
	return nil
}

// searchRead runs model.search_read with an en_GB language context.
func (c *Client) searchRead(ctx context.Context, model string, domain []any, fields []string, out any) error {
	kwargs := map[string]any{
		"fields":  fields,
		"context": map[string]any{"lang": "en_GB"},
	}
	return c.call(ctx, "object", "execute_kw",
		[]any{c.cfg.Database, c.uid, c.cfg.APIKey, model, "search_read", []any{domain}, kwargs}, out)
}
