// Package client runs reports against a remote salesboard server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/seuros/salesboard/internal/query"
)

// DefaultTimeout bounds a request when the context carries no deadline.
const DefaultTimeout = 30 * time.Second

// ErrServer is returned for unexpected server responses.
var ErrServer = errors.New("server error")

// Client fetches report results over HTTP.
type Client struct {
	base    string
	timeout time.Duration
	http    *fasthttp.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:         "salesboard-cli",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

// Run fetches one report and decodes it into the report's record type.
func (c *Client) Run(ctx context.Context, name string, f query.Filter) (any, error) {
	report, err := query.Lookup(name)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "/api/"+name, filterArgs(f))
	if err != nil {
		return nil, err
	}
	return report.Decode(body)
}

// Health calls /up and fails on any non-200 response.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/up", nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, args *fasthttp.Args) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.base + path
	if args != nil && args.Len() > 0 {
		uri += "?" + string(args.QueryString())
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}

	body := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusOK:
		return body, nil
	case status == fasthttp.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", query.ErrInvalidDate, errorMessage(body))
	case status == fasthttp.StatusNotFound && strings.HasPrefix(path, "/api/"):
		// Only report routes answer 404 for an unknown name.
		return nil, fmt.Errorf("%w: %s", query.ErrUnknownReport, errorMessage(body))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrServer, status, errorMessage(body))
	}
}

func filterArgs(f query.Filter) *fasthttp.Args {
	args := &fasthttp.Args{}
	if !f.Start.IsZero() {
		args.Add("start_date", f.Start.UTC().Format(time.RFC3339Nano))
	}
	if !f.End.IsZero() {
		args.Add("end_date", f.End.UTC().Format(time.RFC3339Nano))
	}
	for _, c := range f.Countries {
		args.Add("country", c)
	}
	if f.Product != "" {
		args.Add("product", f.Product)
	}
	return args
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
