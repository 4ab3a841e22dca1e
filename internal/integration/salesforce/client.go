package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/flexprice/donorsync/internal/config"
	ierr "github.com/flexprice/donorsync/internal/errors"
	"github.com/flexprice/donorsync/internal/httpclient"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/sentry"
	"golang.org/x/oauth2"
)

const tokenPath = "/services/oauth2/token"

// Fields is the body of an sObject create or update
type Fields map[string]interface{}

// Client defines the Salesforce REST operations the repositories need
type Client interface {
	// Query runs a SOQL query and returns every record, following pagination
	Query(ctx context.Context, soql string) ([]json.RawMessage, error)
	// Create inserts an sObject and returns its id
	Create(ctx context.Context, sobject string, fields Fields) (string, error)
	// Update patches an existing sObject
	Update(ctx context.Context, sobject, id string, fields Fields) error
}

type client struct {
	cfg        config.SalesforceConfig
	logger     *logger.Logger
	sentry     *sentry.Service
	http       *http.Client
	httpClient httpclient.Client
	oauth      *oauth2.Config

	mu     sync.Mutex
	tokens oauth2.TokenSource
}

// NewClient creates a Salesforce REST client authenticated with the OAuth2
// username-password flow
func NewClient(cfg *config.Configuration, logger *logger.Logger, sentrySvc *sentry.Service) Client {
	sf := cfg.CRM.Salesforce
	timeout := sf.Timeout
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}

	c := &client{
		cfg:        sf,
		logger:     logger,
		sentry:     sentrySvc,
		http:       hc,
		httpClient: httpclient.NewClient(hc),
		oauth: &oauth2.Config{
			ClientID:     sf.ClientID,
			ClientSecret: sf.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(sf.LoginURL, "/") + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
	c.tokens = c.newTokenSource()
	return c
}

// passwordTokenSource logs in with the integration user's credentials
type passwordTokenSource struct {
	c *client
}

func (s passwordTokenSource) Token() (*oauth2.Token, error) {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, s.c.http)
	token, err := s.c.oauth.PasswordCredentialsToken(ctx, s.c.cfg.Username, s.c.cfg.Password)
	if err != nil {
		s.c.logger.Errorw("salesforce login failed", "error", err, "login_url", s.c.cfg.LoginURL)
		return nil, ierr.WithError(err).
			WithHint("Salesforce login failed, check the integration user credentials").
			Mark(ierr.ErrHTTPClient)
	}
	s.c.logger.Infow("logged in to salesforce", "instance_url", token.Extra("instance_url"))
	return token, nil
}

// Salesforce access tokens carry no expiry, so a token is reused until the
// API rejects it
func (c *client) newTokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, passwordTokenSource{c: c})
}

func (c *client) token() (*oauth2.Token, string, error) {
	c.mu.Lock()
	src := c.tokens
	c.mu.Unlock()

	token, err := src.Token()
	if err != nil {
		return nil, "", err
	}
	instanceURL, _ := token.Extra("instance_url").(string)
	if instanceURL == "" {
		return nil, "", ierr.NewError("salesforce token has no instance url").
			WithHint("Salesforce login response did not include instance_url").
			Mark(ierr.ErrHTTPClient)
	}
	return token, strings.TrimRight(instanceURL, "/"), nil
}

func (c *client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = c.newTokenSource()
}

// send issues an authenticated request against the versioned REST root. An
// expired session is renewed once.
func (c *client) send(ctx context.Context, method, path string, body []byte) (*httpclient.Response, error) {
	span, ctx := c.sentry.StartCRMSpan(ctx, "salesforce."+strings.ToLower(method), map[string]interface{}{
		"path": path,
	})
	defer sentry.FinishSpan(span)

	resp, err := c.sendOnce(ctx, method, path, body)
	if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusUnauthorized {
		c.logger.Infow("salesforce session expired, logging in again")
		c.invalidateToken()
		resp, err = c.sendOnce(ctx, method, path, body)
	}
	if err != nil {
		return nil, decodeError(err)
	}
	return resp, nil
}

func (c *client) sendOnce(ctx context.Context, method, path string, body []byte) (*httpclient.Response, error) {
	token, instanceURL, err := c.token()
	if err != nil {
		return nil, err
	}

	target := path
	if !strings.HasPrefix(path, "/services/") {
		target = fmt.Sprintf("/services/data/%s%s", c.cfg.APIVersion, path)
	}

	return c.httpClient.Send(ctx, &httpclient.Request{
		Method: method,
		URL:    instanceURL + target,
		Headers: map[string]string{
			"Authorization": token.Type() + " " + token.AccessToken,
			"Accept":        "application/json",
		},
		Body: body,
	})
}

type queryResponse struct {
	TotalSize      int               `json:"totalSize"`
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl"`
	Records        []json.RawMessage `json:"records"`
}

func (c *client) Query(ctx context.Context, soql string) ([]json.RawMessage, error) {
	c.logger.Debugw("salesforce query", "soql", soql)

	path := "/query?q=" + url.QueryEscape(soql)
	var records []json.RawMessage
	for path != "" {
		resp, err := c.send(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var page queryResponse
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode Salesforce query response").
				Mark(ierr.ErrHTTPClient)
		}
		records = append(records, page.Records...)

		path = ""
		if !page.Done {
			path = page.NextRecordsURL
		}
	}
	return records, nil
}

type createResponse struct {
	ID      string     `json:"id"`
	Success bool       `json:"success"`
	Errors  []apiError `json:"errors"`
}

func (c *client) Create(ctx context.Context, sobject string, fields Fields) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", ierr.WithError(err).
			WithHintf("Failed to encode %s", sobject).
			Mark(ierr.ErrValidation)
	}

	resp, err := c.send(ctx, http.MethodPost, "/sobjects/"+sobject+"/", body)
	if err != nil {
		c.logger.Errorw("salesforce create failed", "sobject", sobject, "error", err)
		return "", err
	}

	var created createResponse
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return "", ierr.WithError(err).
			WithHintf("Failed to decode %s create response", sobject).
			Mark(ierr.ErrHTTPClient)
	}
	if !created.Success || created.ID == "" {
		return "", apiErrors(created.Errors).toError(nil)
	}
	return created.ID, nil
}

func (c *client) Update(ctx context.Context, sobject, id string, fields Fields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to encode %s", sobject).
			Mark(ierr.ErrValidation)
	}

	if _, err := c.send(ctx, http.MethodPatch, "/sobjects/"+sobject+"/"+url.PathEscape(id), body); err != nil {
		c.logger.Errorw("salesforce update failed", "sobject", sobject, "id", id, "error", err)
		return err
	}
	return nil
}

// queryAs runs soql and decodes every record into T
func queryAs[T any](ctx context.Context, c Client, soql string) ([]*T, error) {
	records, err := c.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(records))
	for _, raw := range records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode Salesforce record").
				Mark(ierr.ErrHTTPClient)
		}
		out = append(out, &rec)
	}
	return out, nil
}
