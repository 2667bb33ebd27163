// Package sources holds the registry of news sites polled for each digest
package sources

import (
	"dailydigest/internal/core"
	"fmt"
	"net/url"
	"strings"
)

// Default returns the built-in registry in polling order.
func Default() []core.Source {
	return []core.Source{
		{Name: "The Verge", URL: "https://www.theverge.com"},
		{Name: "TechCrunch", URL: "https://techcrunch.com"},
		{Name: "Hacker News", URL: "https://news.ycombinator.com"},
		{Name: "The New York Times", URL: "https://www.nytimes.com"},
		{Name: "NOS", URL: "https://nos.nl"},
		{Name: "NRC", URL: "https://nrc.nl"},
		{Name: "9to5Mac", URL: "https://9to5mac.com"},
		{Name: "The Next Web", URL: "https://thenextweb.com"},
		{Name: "Axios", URL: "https://axios.com"},
	}
}

// Validate checks that every source has a unique name and an absolute http(s) URL.
func Validate(list []core.Source) error {
	if len(list) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seen := make(map[string]bool, len(list))
	var problems []string
	for i, s := range list {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			problems = append(problems, fmt.Sprintf("source #%d has no name", i+1))
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate source name %q", name))
		}
		seen[key] = true

		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("source %q has invalid URL %q", name, s.URL))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid sources: %s", strings.Join(problems, "; "))
	}
	return nil
}
