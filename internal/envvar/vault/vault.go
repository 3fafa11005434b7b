package vault

import (
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"

	"github.com/tasktrail/tasktrail-api/internal"
)

// Provider reads secrets from HashiCorp Vault's KV v2 engine, caching paths
// already fetched.
type Provider struct {
	client *api.Client
	path   string

	mu   sync.Mutex
	data map[string]map[string]interface{}
}

// New instantiates a Vault client using the supplied token and address.
func New(token, addr, path string) (*Provider, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		client: client,
		path:   path,
		data:   make(map[string]map[string]interface{}),
	}, nil
}

// Get reads a secret referenced as "<secret path>:<secret key>".
func (p *Provider) Get(v string) (string, error) {
	path, key, found := strings.Cut(v, ":")
	if !found {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "missing ':' in %q", v)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data, ok := p.data[path]
	if !ok {
		secret, err := p.client.Logical().Read(p.path + path)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Logical.Read")
		}

		if secret == nil {
			return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret not found: %s", path)
		}

		inner, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return "", internal.NewErrorf(internal.ErrorCodeUnknown, "malformed secret data")
		}

		p.data[path] = inner
		data = inner
	}

	res, ok := data[key].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "secret key not found: %s", key)
	}

	return res, nil
}
