package provider

import "fmt"

// Registry routes model labels to the vendor clients that serve them.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from the configured vendor clients. Pass nil
// for vendors without credentials; resolving a model that needs one then
// fails with a clear error instead of an opaque HTTP 401.
func NewRegistry(openai, anthropic Provider) *Registry {
	providers := make(map[string]Provider)
	if openai != nil {
		providers["openai"] = openai
	}
	if anthropic != nil {
		providers["anthropic"] = anthropic
	}
	return &Registry{providers: providers}
}

// ForModel resolves a model label to the client serving it and the vendor
// model info.
func (r *Registry) ForModel(label string) (Provider, ModelInfo, error) {
	info, err := ResolveModel(label)
	if err != nil {
		return nil, ModelInfo{}, err
	}
	p, ok := r.providers[info.Provider]
	if !ok {
		return nil, ModelInfo{}, fmt.Errorf("model %q requires the %s provider, which is not configured", label, info.Provider)
	}
	return p, info, nil
}
