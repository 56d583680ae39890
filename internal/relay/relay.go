package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts signed raw transactions to a private relay as a JSON-RPC
// envelope. Any 2xx response counts as acceptance and the body is
// returned verbatim; the relay offers no inclusion visibility, so there
// is nothing further to wait for.
type Client struct {
	URL       string
	AuthToken string // optional bearer credential
	http      *http.Client
}

func NewClient(url, authToken string) *Client {
	return &Client{
		URL:       strings.TrimSpace(url),
		AuthToken: strings.TrimSpace(authToken),
		http:      &http.Client{Timeout: 12 * time.Second},
	}
}

type rpcReq struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// SendRaw submits one signed raw transaction ("0x..."-hex) and returns
// the full response body. Non-2xx statuses are hard failures for the
// attempt.
func (c *Client) SendRaw(ctx context.Context, rawTx string) (string, error) {
	body, _ := json.Marshal(rpcReq{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "eth_sendRawTransaction",
		Params:  []any{rawTx},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return string(rb), fmt.Errorf("relay http %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}
	return string(rb), nil
}
