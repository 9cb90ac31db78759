package finance_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "finance_api").Logger()

// TokenSource yields the bearer token for authenticated calls. The second
// return is false when no valid token is available.
type TokenSource interface {
	Token() (string, bool)
}

type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

var ErrNoToken = &APIError{StatusCode: http.StatusUnauthorized, Message: "no active session token"}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	return req, nil
}

// doJSON issues a request with an optional JSON body and decodes the data
// field of the response envelope into out. Authenticated calls fail fast when
// the token source has nothing valid.
func (c *Client) doJSON(ctx context.Context, method, path string, authed bool, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(raw)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		err = c.authorize(req)
		if err != nil {
			return err
		}
	}

	return c.send(req, out)
}

func (c *Client) authorize(req *http.Request) error {
	token, ok := c.tokens.Token()
	if !ok {
		return ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) send(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("url", req.URL.String()).Msg("request failed")
		return err
	}
	defer res.Body.Close()

	var env envelope
	err = json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &APIError{StatusCode: res.StatusCode, Message: msg}
	}

	if err != nil {
		return fmt.Errorf("decoding response of %s: %w", req.URL.Path, err)
	}

	if !env.Status {
		return &APIError{StatusCode: res.StatusCode, Message: env.Message}
	}

	if out != nil {
		err = json.Unmarshal(env.Data, out)
		if err != nil {
			return fmt.Errorf("decoding data of %s: %w", req.URL.Path, err)
		}
	}

	return nil
}
