package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/owi-lab/go-metadatabase/internal/pkg/build"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

const (
	RequestTimeout        = 30 * time.Second
	HTTPTimeout           = 30 * time.Second
	IdleConnTimeout       = 30 * time.Second
	TLSHandshakeTimeout   = 10 * time.Second
	ResponseHeaderTimeout = 20 * time.Second
	ExpectContinueTimeout = 2 * time.Second
	KeepAlive             = 20 * time.Second
	MaxIdleConns          = 32
	RetryWaitTime         = 100 * time.Millisecond
	RetryWaitTimeMax      = 3 * time.Second
)

// Client - authenticated http client.
// One Send is one network call, unless Config.Retry is set.
type Client struct {
	config Config
	logger *Logger
	resty  *resty.Client
}

func New(ctx context.Context, config Config, logger log.Logger) (*Client, error) {
	config = config.Normalize()
	if err := config.Validate(ctx); err != nil {
		return nil, errors.PrefixError(err, "invalid client config")
	}

	c := &Client{config: config}
	c.logger = &Logger{logger: logger}
	c.resty = createHTTPClient(c.logger, config)
	c.setupLogs()
	return c, nil
}

func (c *Client) Config() Config {
	return c.config
}

// RestyClient returns the wrapped http client, used by tests to mock transport.
func (c *Client) RestyClient() *resty.Client {
	return c.resty
}

// Send executes the request and interprets the HTTP status.
// Raw transport errors never leak: a network failure maps to ConnectionError,
// 4xx to ClientRequestError and 5xx to ServerError.
func (c *Client) Send(ctx context.Context, request Request) (*Envelope, error) {
	if c.config.Retry == nil {
		return c.send(ctx, request)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.config.Retry.newBackOff(), uint64(c.config.Retry.MaxRetries)),
		ctx,
	)
	return backoff.RetryWithData(func() (*Envelope, error) {
		envelope, err := c.send(ctx, request)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return envelope, err
	}, policy)
}

func (c *Client) send(ctx context.Context, request Request) (*Envelope, error) {
	r := c.resty.R().SetContext(ctx)
	params := request.Params()
	for _, key := range params.Keys() {
		value, _ := params.Get(key)
		r.SetQueryParam(key, fmt.Sprintf("%v", value))
	}

	res, err := r.Get(request.Path())
	if err != nil {
		return nil, &ConnectionError{URL: c.config.APIRoot + request.Path(), Err: err}
	}

	switch {
	case res.IsSuccess():
		return &Envelope{Status: res.StatusCode(), Body: res.Body()}, nil
	case res.StatusCode() >= http.StatusInternalServerError:
		return nil, &ServerError{Status: res.StatusCode(), Path: request.Path()}
	default:
		return nil, &ClientRequestError{Status: res.StatusCode(), Path: request.Path()}
	}
}

func retryable(err error) bool {
	var connErr *ConnectionError
	var serverErr *ServerError
	return errors.As(err, &connErr) || errors.As(err, &serverErr)
}

func (c *RetryConfig) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialWait
	b.MaxInterval = c.MaxWait
	b.MaxElapsedTime = 0
	return b
}

func createHTTPClient(logger *Logger, config Config) *resty.Client {
	r := resty.New()
	r.SetLogger(logger)
	r.SetBaseURL(config.APIRoot)
	r.SetHeader("User-Agent", fmt.Sprintf("go-metadatabase/%s", build.BuildVersion))
	r.SetTimeout(config.Timeout)
	r.SetTransport(createTransport())

	if config.Token != "" {
		r.SetHeader("Authorization", config.Token)
	} else {
		r.SetBasicAuth(config.Username, config.Password)
	}

	return r
}

// createTransport with custom timeouts.
func createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   HTTPTimeout,
		KeepAlive: KeepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          MaxIdleConns,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ResponseHeaderTimeout: ResponseHeaderTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		MaxIdleConnsPerHost:   MaxIdleConns,
	}
}

func (c *Client) setupLogs() {
	// Debug full request and response if verbose = true
	// Secrets are hidden, see Logger
	if c.config.Verbose {
		c.resty.SetDebug(true)
		c.resty.SetDebugBodyLimit(32 * 1024)
	}

	// Log each request when done
	c.resty.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if res.IsSuccess() {
			c.logger.Debugf("%s", responseToLog(res))
		} else {
			c.logger.Warnf("%s", responseToLog(res))
		}
		return nil
	})
	c.resty.OnError(func(req *resty.Request, err error) {
		var resErr *resty.ResponseError
		if errors.As(err, &resErr) {
			c.logger.Errorf("%s", responseToLog(resErr.Response))
		} else {
			c.logger.Errorf("%s", requestToLog(req, err))
		}
	})
}

func requestToLog(req *resty.Request, err error) string {
	return fmt.Sprintf("%s %s | %s", req.Method, req.URL, err)
}

func responseToLog(res *resty.Response) string {
	req := res.Request
	return fmt.Sprintf("%s %s | %d | %s", req.Method, req.URL, res.StatusCode(), res.Time())
}
