package envvar

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tasktrail/tasktrail-api/internal"
)

// Provider represents the methods to read secret values referenced from
// environment variables.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration is an abstraction built on top of environment variables, values
// suffixed with "_SECURE" are read through the secrets Provider using the
// environment variable value as the lookup key.
type Configuration struct {
	provider Provider
}

// Load reads the env filename and loads it into ENV for this process, existing
// variables win.
func Load(filename string) error {
	if filename == "" {
		return nil
	}

	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "loading env var file")
	}

	return nil
}

// New ...
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value for the key, indirecting through the secrets provider
// when a "<key>_SECURE" variant is defined.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(key + "_SECURE")
	if valSecret != "" {
		valSecretRes, err := c.provider.Get(valSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "provider.Get")
		}

		res = valSecretRes
	}

	return strings.TrimSpace(res), nil
}
