package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

// CredentialSource supplies the identity attached to every request. The
// session store implements it; login probes bypass it with explicit
// credentials.
type CredentialSource interface {
	Credentials() (username, passwordHash string, ok bool)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger attaches a zap logger for request tracing.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client performs authenticated requests against resource URLs and parses
// collection documents out of the responses. GETs expect a structured body;
// mutating requests only read the body to harvest a server error detail.
type Client struct {
	httpClient *http.Client
	creds      CredentialSource
	log        *zap.Logger
}

// New builds a client around a credential source.
func New(creds CredentialSource, options ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		creds:      creds,
		log:        zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BasicAuth encodes the Basic scheme value for a username and pre-hashed
// password pair.
func BasicAuth(username, passwordHash string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+passwordHash))
}

// Get fetches and parses the document at url using the session credentials.
func (c *Client) Get(ctx context.Context, url string) (*collection.Document, error) {
	username, hash, _ := c.creds.Credentials()
	return c.get(ctx, url, username, hash)
}

// GetAs fetches with explicit credentials, bypassing the session. Used for
// the login probe before any session exists.
func (c *Client) GetAs(ctx context.Context, url, username, passwordHash string) (*collection.Document, error) {
	return c.get(ctx, url, username, passwordHash)
}

func (c *Client) get(ctx context.Context, url, username, passwordHash string) (*collection.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, err: err}
	}
	req.Header.Set("Accept", collection.MediaType+", application/json")
	req.Header.Set("Authorization", BasicAuth(username, passwordHash))

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if failure := c.failureFrom(resp, url); failure != nil {
		return nil, failure
	}

	doc, err := collection.DecodeDocument(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Status: resp.StatusCode, URL: url, err: err}
	}
	return doc, nil
}

// Post submits a template to url. On success the Location response header is
// returned so callers can follow a freshly created resource, for example to
// prompt an attachment upload right after creating an exam record. profile
// may be empty.
func (c *Client) Post(ctx context.Context, url string, tpl collection.Template, profile string) (string, error) {
	return c.submit(ctx, http.MethodPost, url, tpl, profile)
}

// Put updates the resource at url with a filled template.
func (c *Client) Put(ctx context.Context, url string, tpl collection.Template, profile string) error {
	_, err := c.submit(ctx, http.MethodPut, url, tpl, profile)
	return err
}

func (c *Client) submit(ctx context.Context, method, url string, tpl collection.Template, profile string) (string, error) {
	var body bytes.Buffer
	if err := collection.EncodeTemplate(&body, tpl); err != nil {
		return "", &Error{Kind: KindDecode, URL: url, err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, &body)
	if err != nil {
		return "", &Error{Kind: KindNetwork, URL: url, err: err}
	}
	contentType := collection.MediaType
	if profile != "" {
		contentType += ";" + profile
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if failure := c.failureFrom(resp, url); failure != nil {
		return "", failure
	}
	return resp.Header.Get("Location"), nil
}

// Delete removes the resource at url.
func (c *Client) Delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return &Error{Kind: KindNetwork, URL: url, err: err}
	}
	c.authorize(req)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if failure := c.failureFrom(resp, url); failure != nil {
		return failure
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	username, hash, _ := c.creds.Credentials()
	req.Header.Set("Authorization", BasicAuth(username, hash))
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	c.log.Debug("client: request",
		zap.String("id", requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("client: transport failure", zap.String("id", requestID), zap.Error(err))
		return nil, &Error{Kind: KindNetwork, URL: req.URL.String(), err: err}
	}

	c.log.Debug("client: response",
		zap.String("id", requestID),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (c *Client) failureFrom(resp *http.Response, url string) *Error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Status: resp.StatusCode, URL: url, Detail: readDetail(resp.Body)}
	default:
		return &Error{Kind: KindServer, Status: resp.StatusCode, URL: url, Detail: readDetail(resp.Body)}
	}
}

// readDetail extracts the server's human-readable message from an error
// body, when one is parseable. The API emits {"detail": "..."} problem
// bodies; anything else is ignored.
func readDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var problem struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &problem); err != nil {
		return ""
	}
	return problem.Detail
}
