package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockLLM is an offline stand-in for local debugging. It never calls
// out; blog prompts get a frontmatter-shaped document so the rest of
// the pipeline can run end to end.
type MockLLM struct{}

// MockFactory adapts MockLLM to the pipeline's factory contract. It
// accepts any key, including none.
func MockFactory() ClientFactory {
	return func(string) (LLMClient, error) {
		return MockLLM{}, nil
	}
}

func (m MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	// Prefix match: social prompts can quote blog instructions inside
	// their context excerpt.
	if strings.HasPrefix(prompt, "Write a professional blog post") {
		var sb strings.Builder
		sb.WriteString("---\n")
		sb.WriteString("title: \"Placeholder Post\"\n")
		sb.WriteString("description: \"Locally generated placeholder content\"\n")
		sb.WriteString(fmt.Sprintf("date: %q\n", time.Now().Format("2006-01-02")))
		sb.WriteString("author: \"Author\"\n")
		sb.WriteString("---\n")
		sb.WriteString("## Placeholder\n\n")
		sb.WriteString("This content was produced by the mock provider.\n\n")
		sb.WriteString("Prompt was:\n\n```\n")
		sb.WriteString(prompt)
		sb.WriteString("\n```\n")
		return sb.String(), nil
	}
	return "Placeholder post for: " + firstLine(prompt), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
