package artifact

import "net/http"

// Option configures artifact loading.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithHTTPClient sets the client used by remote classifiers. The artifact's
// timeout_ms still bounds every call.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}
