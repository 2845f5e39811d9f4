package client

import (
	"context"
	"strings"
	"time"

	"github.com/owi-lab/go-metadatabase/internal/pkg/env"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
	"github.com/owi-lab/go-metadatabase/internal/pkg/validator"
)

// DefaultAPIRoot is the public deployment of the metadatabase.
const DefaultAPIRoot = "https://owimetadatabase.azurewebsites.net/api/v1"

// Config of the API client. The credential is explicit:
// either Token, or Username and Password, exactly one mode.
type Config struct {
	APIRoot  string        `json:"apiRoot" validate:"required,url"`
	Token    string        `json:"token"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Timeout  time.Duration `json:"timeout"`
	Retry    *RetryConfig  `json:"retry"`
	Verbose  bool          `json:"verbose"`
}

// RetryConfig enables re-sending of failed requests.
// Only network failures and server errors are retried,
// the zero value of Config.Retry means no retries at all.
type RetryConfig struct {
	MaxRetries  uint          `json:"maxRetries" validate:"required,min=1"`
	InitialWait time.Duration `json:"initialWait"`
	MaxWait     time.Duration `json:"maxWait"`
}

// NewConfig returns the config for the public deployment with a token credential.
func NewConfig(token string) Config {
	return Config{APIRoot: DefaultAPIRoot, Token: token}
}

// ConfigFromEnv reads the OWIDB_* variables from the provider.
func ConfigFromEnv(envs env.Provider) Config {
	return Config{
		APIRoot:  envs.Get("OWIDB_API_ROOT"),
		Token:    envs.Get("OWIDB_TOKEN"),
		Username: envs.Get("OWIDB_USERNAME"),
		Password: envs.Get("OWIDB_PASSWORD"),
	}
}

// Normalize fills defaults and the canonical token form.
func (c Config) Normalize() Config {
	if c.APIRoot == "" {
		c.APIRoot = DefaultAPIRoot
	}
	c.APIRoot = strings.TrimRight(c.APIRoot, "/")
	if c.Timeout <= 0 {
		c.Timeout = RequestTimeout
	}
	if c.Token != "" {
		c.Token = normalizeToken(c.Token)
	}
	if c.Retry != nil {
		retry := *c.Retry
		if retry.InitialWait <= 0 {
			retry.InitialWait = RetryWaitTime
		}
		if retry.MaxWait <= 0 {
			retry.MaxWait = RetryWaitTimeMax
		}
		c.Retry = &retry
	}
	return c
}

func (c Config) Validate(ctx context.Context) error {
	errs := errors.NewMultiError()

	hasToken := c.Token != ""
	hasBasic := c.Username != "" || c.Password != ""
	switch {
	case !hasToken && !hasBasic:
		errs.Append(errors.New("either token or username and password must be defined"))
	case hasToken && hasBasic:
		errs.Append(errors.New("token and username/password are mutually exclusive"))
	case hasBasic && (c.Username == "" || c.Password == ""):
		errs.Append(errors.New("both username and password must be defined"))
	}

	if err := validator.New().ValidateCtx(ctx, c, "dive", "config"); err != nil {
		errs.Append(err)
	}

	return errs.ErrorOrNil()
}

// normalizeToken builds the canonical "Token <value>" header value,
// a "token"/"Token" prefix in the input is accepted.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 5 && strings.EqualFold(token[:5], "token") {
		token = strings.TrimSpace(token[5:])
	}
	return "Token " + token
}
