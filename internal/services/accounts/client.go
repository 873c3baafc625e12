// Package accounts talks to the identity provider that owns the external
// accounts profiles are bound to.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
)

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

func (c *Client) Get(ctx context.Context, externalID string) (Account, error) {
	resp, err := c.do(ctx, http.MethodGet, externalID)
	if err != nil {
		return Account{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Account{}, errs.NotFound("account %s", externalID)
	default:
		return Account{}, unexpectedStatus("get account", resp)
	}

	var account Account
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&account); err != nil {
		return Account{}, errs.Store("decode account", err)
	}
	if account.ID == "" {
		account.ID = externalID
	}
	return account, nil
}

// Delete removes the external account. An account that is already gone
// counts as deleted.
func (c *Client) Delete(ctx context.Context, externalID string) error {
	resp, err := c.do(ctx, http.MethodDelete, externalID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return unexpectedStatus("delete account", resp)
	}
}

func (c *Client) do(ctx context.Context, method, externalID string) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("accounts base url is not configured")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, errs.Invalid("account id is required")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/accounts/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, fmt.Errorf("build accounts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Store("accounts "+strings.ToLower(method), err)
	}
	return resp, nil
}

func unexpectedStatus(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errs.Store(op, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
}
