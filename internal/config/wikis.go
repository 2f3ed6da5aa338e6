package config

import "time"

// WikiConfig holds the settings of one wiki profile.
// Zero values mean "not set" and leave the built-in default in place.
type WikiConfig struct {
	// BaseURL is the wiki root, e.g. "https://de.wikipedia.org".
	BaseURL string `yaml:"baseURL,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Headers are custom HTTP headers to include in requests to this wiki.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxDepth overrides the maximum number of hops.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// MaxPagesFetched overrides the fetch ceiling.
	MaxPagesFetched int `yaml:"maxPagesFetched,omitempty"`

	// RequestDelay overrides the delay between requests, e.g. "250ms".
	RequestDelay time.Duration `yaml:"requestDelay,omitempty"`

	// Workers overrides the number of concurrent fetches.
	Workers int `yaml:"workers,omitempty"`

	// Proxy routes requests to this wiki through a SOCKS5 proxy.
	Proxy string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .wikicrawler configuration file.
type File struct {
	// Wikis maps profile names to wiki configurations, e.g. "simple".
	Wikis map[string]WikiConfig `yaml:"wikis,omitempty"`

	// Defaults applies to every search unless a selected profile
	// overrides it.
	Defaults WikiConfig `yaml:"defaults,omitempty"`
}

// GetWikiConfig returns the configuration for a wiki profile merged over
// the defaults. An empty or unknown name returns the defaults.
func (cf *File) GetWikiConfig(name string) WikiConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	w, ok := cf.Wikis[name]
	if name == "" || !ok {
		return result
	}

	if w.BaseURL != "" {
		result.BaseURL = w.BaseURL
	}
	if w.UserAgent != "" {
		result.UserAgent = w.UserAgent
	}
	if w.MaxDepth != 0 {
		result.MaxDepth = w.MaxDepth
	}
	if w.MaxPagesFetched != 0 {
		result.MaxPagesFetched = w.MaxPagesFetched
	}
	if w.RequestDelay != 0 {
		result.RequestDelay = w.RequestDelay
	}
	if w.Workers != 0 {
		result.Workers = w.Workers
	}
	if w.Proxy != "" {
		result.Proxy = w.Proxy
	}
	if len(w.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(w.Headers))
		}
		for k, v := range w.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
