package env

import (
	"fmt"
	"strings"
)

const Prefix = "OWIDB_"

type NamingConvention struct{}

func NewNamingConvention() *NamingConvention {
	return &NamingConvention{}
}

// Replace converts flag name to ENV variable name
// for example "api-root" -> "OWIDB_API_ROOT".
func (*NamingConvention) Replace(flagName string) string {
	if len(flagName) == 0 {
		panic(fmt.Errorf("flag name cannot be empty"))
	}

	return Prefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func Files() []string {
	return []string{
		".env.local",
		".env",
	}
}
