package summarize

import (
	"dailydigest/internal/core"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// SchemaName identifies the digest schema in provider requests.
const SchemaName = "news_digest"

// bannedPhrases keep summaries factual rather than analytical.
var bannedPhrases = []string{
	"This highlights",
	"This underscores",
	"This signals",
	"This marks a shift",
	"raises questions about",
	"It remains to be seen",
	"in an era of",
}

// Schema is the strict response schema for the digest.
func Schema() jsonschema.Definition {
	article := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":   {Type: jsonschema.String, Description: "Original article title"},
			"url":     {Type: jsonschema.String, Description: "Article URL"},
			"source":  {Type: jsonschema.String, Description: "Source name"},
			"summary": {Type: jsonschema.String, Description: "1-2 sentence summary of the article"},
		},
		Required:             []string{"title", "url", "source", "summary"},
		AdditionalProperties: false,
	}

	category := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"category":   {Type: jsonschema.String, Description: "Name of the news category or theme"},
			"commentary": {Type: jsonschema.String, Description: "Brief factual context for this group of articles"},
			"articles":   {Type: jsonschema.Array, Items: &article},
		},
		Required:             []string{"category", "commentary", "articles"},
		AdditionalProperties: false,
	}

	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"introText": {
				Type:        jsonschema.String,
				Description: "A short opening paragraph for today's digest",
			},
			"categories": {Type: jsonschema.Array, Items: &category},
		},
		Required:             []string{"introText", "categories"},
		AdditionalProperties: false,
	}
}

// BuildDigestPrompt creates the instruction that groups articles into categories.
func BuildDigestPrompt(articles []core.Article, maxPerCategory int) string {
	var prompt strings.Builder

	prompt.WriteString("You are a professional newsletter curator. Analyze the following articles and create a structured digest with the following requirements:\n\n")
	prompt.WriteString("1. Write a short introText (2-3 sentences) naming the main stories of the day\n")
	prompt.WriteString("2. Group articles by topic/theme into categories\n")
	prompt.WriteString("3. When several articles cover the same event, keep only the most informative one\n")
	prompt.WriteString("4. For each category:\n")
	prompt.WriteString("   - Provide a category name\n")
	prompt.WriteString("   - Add a brief commentary with factual context about the theme\n")
	prompt.WriteString("   - Include relevant articles with their titles and 1-2 sentence summaries\n")
	prompt.WriteString(fmt.Sprintf("   - Provide max. %d articles per category\n", maxPerCategory))
	prompt.WriteString("5. Keep summaries strictly factual: who did what, when, and with which concrete numbers\n")
	prompt.WriteString(fmt.Sprintf("6. Never use these phrases: %s\n\n", strings.Join(quote(bannedPhrases), ", ")))

	prompt.WriteString("Articles to process:\n")
	for _, a := range articles {
		prompt.WriteString(fmt.Sprintf("\nTitle: %s\nSource: %s\nContent: %s\nURL: %s\n---\n", a.Title, a.Source, a.Content, a.URL))
	}

	return prompt.String()
}

func quote(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
