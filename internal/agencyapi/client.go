// Package agencyapi is the client for the agency REST backend. Every response
// is checked against a JSON schema before it is decoded.
package agencyapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agency-workers/internal/common/auth"
	"agency-workers/internal/common/errors"
	commonhttp "agency-workers/internal/common/http"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/observability"
)

// DefaultPageLimit is the ceiling used for "fetch everything" list calls.
const DefaultPageLimit = 10000

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	PageLimit     int
	Tokens        auth.TokenSource
	HTTPClient    *http.Client
	Observability *observability.Observability
	Logger        logger.Logger
}

type Client struct {
	baseURL   string
	pageLimit int
	http      *commonhttp.Client
	tokens    auth.TokenSource
	obs       *observability.Observability
	log       logger.Logger
}

func New(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		pageLimit: opts.PageLimit,
		tokens:    opts.Tokens,
		obs:       opts.Observability,
		log:       opts.Logger,
	}
	if c.pageLimit <= 0 {
		c.pageLimit = DefaultPageLimit
	}
	if opts.HTTPClient != nil {
		c.http = commonhttp.NewClientWith(opts.HTTPClient)
	} else {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = commonhttp.NewClient(timeout)
	}
	if c.log == nil {
		c.log = logger.NewNoOpLogger()
	}
	return c
}

func (c *Client) PageLimit() int { return c.pageLimit }

// call performs one request and returns the raw body of a 2xx response.
// Transport failures and non-2xx statuses become StandardErrors.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	headers := map[string]string{}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	start := time.Now()
	resp, err := c.http.DoJSON(ctx, method, endpoint, headers, body)
	if err != nil {
		c.obs.RecordAPIRequest(ctx, method, 0, time.Since(start))
		if isTimeout(ctx, err) {
			return nil, errors.NewAPITimeoutError(method, path)
		}
		return nil, errors.NewAPIRequestFailedError(method, path, 0, err.Error())
	}
	c.obs.RecordAPIRequest(ctx, method, resp.Status, time.Since(start))

	c.log.Debug("Agency API call", map[string]interface{}{
		"method": method,
		"path":   path,
		"status": resp.Status,
	})

	switch {
	case resp.OK():
		return resp.Body, nil
	case resp.Status == http.StatusNotFound:
		return nil, errors.NewResourceNotFoundError(path, apiMessage(resp.Body))
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return nil, errors.NewAuthenticationError(fmt.Sprintf("%s %s: status %d", method, path, resp.Status))
	default:
		return nil, errors.NewAPIRequestFailedError(method, path, resp.Status, apiMessage(resp.Body))
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// IsNotFound reports whether err is a 404 or an empty lookup.
func IsNotFound(err error) bool {
	return errors.Code(err) == string(errors.ErrCodeResourceNotFound)
}
