package sheets

import "net/http"

// Resolver picks between the remote script service and the demo fixtures
// based on the currently configured URL. The URL is re-read on every call so
// a change made in the settings view takes effect without a restart.
type Resolver struct {
	scriptURL func() string
	client    *http.Client
	demo      *Demo
}

// NewResolver builds a resolver around a URL lookup. The lookup is expected
// to be cheap; it runs once per operation.
func NewResolver(scriptURL func() string, client *http.Client) *Resolver {
	return &Resolver{
		scriptURL: scriptURL,
		client:    client,
		demo:      NewDemo(),
	}
}

func (r *Resolver) Source() Source {
	u := r.scriptURL()
	if u == "" || IsDemoURL(u) {
		return r.demo
	}
	return NewRemote(u, r.client)
}
