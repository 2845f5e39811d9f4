package cli

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/env"
)

// Options are the resolved values of the persistent flags.
// Each value is taken from the flag, or the matching OWIDB_*
// environment variable, or the flag default, in this order.
type Options struct {
	APIRoot  string
	Token    string
	Username string
	Password string
	Verbose  bool
}

func (o *Options) Load(envs *env.Map, flags *pflag.FlagSet) {
	naming := env.NewNamingConvention()
	value := func(flagName string) string {
		flag := flags.Lookup(flagName)
		if flag != nil && flag.Changed {
			return flag.Value.String()
		}
		if value, found := envs.Lookup(naming.Replace(flagName)); found {
			return value
		}
		if flag != nil {
			return flag.DefValue
		}
		return ""
	}

	o.APIRoot = value("api-root")
	o.Token = value("token")
	o.Username = value("username")
	o.Password = value("password")
	o.Verbose = cast.ToBool(value("verbose"))
}

// ClientConfig converts the options to the API client config.
func (o *Options) ClientConfig() client.Config {
	return client.Config{
		APIRoot:  o.APIRoot,
		Token:    o.Token,
		Username: o.Username,
		Password: o.Password,
	}
}

// Dump renders the options for the debug log, credentials are masked.
func (o *Options) Dump() string {
	mask := func(value string) string {
		if value == "" {
			return "-"
		}
		return "*****"
	}
	return fmt.Sprintf(
		"Options: api-root=%s, token=%s, username=%s, password=%s, verbose=%t",
		o.APIRoot, mask(o.Token), mask(o.Username), mask(o.Password), o.Verbose,
	)
}
