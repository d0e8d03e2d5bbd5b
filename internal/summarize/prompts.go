package summarize

import (
	"fmt"
	"strings"
	"text/template"

	"brevity/internal/core"
)

// SystemPrompt describes the three-section reply the parser expects.
const SystemPrompt = `You are an AI Analyst that creates concise, well-structured thematic analyses of content. Your task is to analyze the provided content and extract 3-5 key themes, presenting them in a clear format.

Instructions:
1. Carefully read and analyze the provided content
2. Identify 3-5 main themes or key points
3. Format your response as follows:

Thematic Analysis

[Theme 1]
• Key point about theme 1
• Another key point about theme 1

[Theme 2]
• Key point about theme 2
• Another key point about theme 2

[Theme 3]
• Key point about theme 3
• Another key point about theme 3

Email Draft
Subject: Analysis of [Content Title]

Dear [Recipient],

I've analyzed [Content Title] and found these key insights:
• [Brief summary of Theme 1]
• [Brief summary of Theme 2]
• [Brief summary of Theme 3]

Let's discuss these findings soon.

Best regards,
[Your Name]

Social Share
[One engaging sentence about why this content matters]
Hashtags: #Tag1 #Tag2 #Tag3`

// UserPromptTemplate is rendered with the Prompt.Params map.
const UserPromptTemplate = `Please provide a thematic analysis of the following {{.content_type}} content:

{{if .source_context}}{{.source_context}}

{{end}}Title: {{.title}}

Content:
{{.body}}`

// DefaultTitle stands in for a missing title in the prompt.
const DefaultTitle = "Untitled Content"

var userPrompt = template.Must(template.New("user").Parse(UserPromptTemplate))

// Prompt is a rendered system and user message pair together with the
// template and parameters the user message came from.
type Prompt struct {
	System   string
	User     string
	Template string
	Params   map[string]string
}

// BuildPrompt renders the analysis request for normalized content.
func BuildPrompt(content core.NormalizedContent, contentType string) (Prompt, error) {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = DefaultTitle
	}
	if contentType == "" {
		contentType = "article"
	}

	params := map[string]string{
		"content_type":   contentType,
		"title":          title,
		"source_context": SourceContext(content),
		"body":           content.Body,
	}

	var b strings.Builder
	if err := userPrompt.Execute(&b, params); err != nil {
		return Prompt{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	return Prompt{
		System:   SystemPrompt,
		User:     b.String(),
		Template: UserPromptTemplate,
		Params:   params,
	}, nil
}

// SourceContext describes where the content came from in one sentence.
// Raw text and untitled content get no context line.
func SourceContext(content core.NormalizedContent) string {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		return ""
	}
	meta := content.Metadata

	var b strings.Builder
	switch content.Source {
	case core.SourceVideoPlatform:
		fmt.Fprintf(&b, "This is a YouTube video titled %q.", title)
	case core.SourcePodcastCatalog:
		fmt.Fprintf(&b, "This is a Spotify podcast episode titled %q", title)
		if show := meta["show"]; show != "" {
			fmt.Fprintf(&b, " from the show %q", show)
		}
		b.WriteString(".")
		if d := meta["duration"]; d != "" {
			fmt.Fprintf(&b, " Duration: %s.", d)
		}
	case core.SourcePodcastFeed:
		fmt.Fprintf(&b, "This is a podcast episode titled %q", title)
		if show := meta["show"]; show != "" {
			fmt.Fprintf(&b, " from the show %q", show)
		}
		b.WriteString(".")
	case core.SourceGenericWeb:
		fmt.Fprintf(&b, "This is an article titled %q.", title)
	default:
		return ""
	}
	return b.String()
}
