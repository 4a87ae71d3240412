package config

import (
	"os"
	"regexp"
)

var envRE = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvWithDefaults replaces ${VAR} and ${VAR:-default} references with
// environment values. An unset variable without a default expands to "".
func ExpandEnvWithDefaults(s string) string {
	return envRE.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRE.FindStringSubmatch(ref)
		if v, ok := os.LookupEnv(m[1]); ok && v != "" {
			return v
		}
		return m[3]
	})
}
