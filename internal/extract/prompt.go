package extract

import (
	"dailydigest/internal/core"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Schema is the strict response schema for extraction.
func Schema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"articles": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"title": {
							Type:        jsonschema.String,
							Description: "The article title",
						},
						"url": {
							Type:        jsonschema.String,
							Description: "The full absolute URL of the article",
						},
						"content": {
							Type:        jsonschema.String,
							Description: "A brief excerpt or summary of the article, 1-2 sentences",
						},
						"category": {
							Type:        jsonschema.String,
							Description: "The most appropriate category, e.g. Technology, Politics, Business",
						},
					},
					Required:             []string{"title", "url", "content", "category"},
					AdditionalProperties: false,
				},
			},
		},
		Required:             []string{"articles"},
		AdditionalProperties: false,
	}
}

// BuildPrompt creates the extraction instruction for one source page.
func BuildPrompt(html string, source core.Source, maxArticles, maxChars int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are a web scraping assistant. Extract news articles from the following HTML content from %s. Return the data in a structured format.\n\n", source.Name))
	prompt.WriteString("The HTML content is:\n")
	prompt.WriteString(truncateContent(html, maxChars))
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("Extract up to %d most prominent articles. For each article, provide:\n", maxArticles))
	prompt.WriteString("1. The article title\n")
	prompt.WriteString(fmt.Sprintf("2. The full URL (if relative, convert to absolute using base URL: %s)\n", source.URL))
	prompt.WriteString("3. A brief excerpt of the content in 1-2 sentences\n")
	prompt.WriteString("4. The most appropriate category for the article (e.g., Technology, Politics, Business, etc.)\n")

	return prompt.String()
}

// truncateContent cuts content at a tag or word boundary below maxChars.
func truncateContent(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}

	truncated := content[:maxChars]
	if lastTag := strings.LastIndex(truncated, ">"); lastTag > maxChars/2 {
		return truncated[:lastTag+1]
	}
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		return truncated[:lastSpace]
	}
	return truncated
}
