package generator

import (
	"fmt"
	"strings"
	"time"
)

// Content targets baked into the prompts.
const (
	blogMinWords       = 800
	blogMaxWords       = 1500
	xMaxChars          = 280
	linkedinTargetLow  = 1000
	linkedinTargetHigh = 1500

	// imageStyleSuffix is appended to every image prompt so covers
	// share one look.
	imageStyleSuffix = "professional, modern, tech-focused, clean composition, suitable for social media"
)

// excerptLen is how many characters of the blog body the social
// prompts receive as shared context. Both social prompts of one run
// must see the identical excerpt.
const excerptLen = 500

// BlogPrompt builds the blog generation instruction. The embedded
// frontmatter template pins the metadata keys the publisher parses
// later.
func BlogPrompt(topic string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a professional blog post about %q.\n\n", topic))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- %d-%d words\n", blogMinWords, blogMaxWords))
	sb.WriteString("- SEO-optimized with clear structure\n")
	sb.WriteString("- Include frontmatter with: title, description, date, author\n")
	sb.WriteString("- Use H2 and H3 headings\n")
	sb.WriteString("- Professional tone but accessible\n")
	sb.WriteString("- Include actionable insights\n\n")
	sb.WriteString("Format:\n")
	sb.WriteString("---\n")
	sb.WriteString("title: \"Your SEO Title\"\n")
	sb.WriteString("description: \"150-160 character description\"\n")
	sb.WriteString(fmt.Sprintf("date: %q\n", time.Now().Format("2006-01-02")))
	sb.WriteString("author: \"Author\"\n")
	sb.WriteString("---\n\n")
	sb.WriteString("[Full blog post content in markdown]\n\n")
	sb.WriteString("Write the complete blog post now:")
	return sb.String()
}

// XPrompt builds the X post instruction from the topic and the shared
// blog excerpt.
func XPrompt(topic, excerpt string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create an X (Twitter) post about %q.\n\n", topic))
	sb.WriteString(fmt.Sprintf("Context: %s\n\n", excerpt))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Maximum %d characters\n", xMaxChars))
	sb.WriteString("- Hook first sentence\n")
	sb.WriteString("- Short, punchy sentences\n")
	sb.WriteString("- End with call-to-action\n")
	sb.WriteString("- NO hashtags (or max 1-2)\n\n")
	sb.WriteString("Write the X post now:")
	return sb.String()
}

// LinkedInPrompt builds the LinkedIn post instruction from the topic
// and the shared blog excerpt.
func LinkedInPrompt(topic, excerpt string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a professional LinkedIn post about %q.\n\n", topic))
	sb.WriteString(fmt.Sprintf("Context: %s\n\n", excerpt))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- %d-%d characters\n", linkedinTargetLow, linkedinTargetHigh))
	sb.WriteString("- Professional storytelling\n")
	sb.WriteString("- Start with a hook\n")
	sb.WriteString("- End with an engaging question\n")
	sb.WriteString("- Add 3-5 relevant hashtags at the bottom\n\n")
	sb.WriteString("Write the LinkedIn post now:")
	return sb.String()
}

// ImagePrompt builds the cover image instruction.
func ImagePrompt(topic string) string {
	return fmt.Sprintf("Generate an image: a cover illustration for a blog post about %q. Style: %s", topic, imageStyleSuffix)
}

// Excerpt returns the first excerptLen characters of the
// post-frontmatter blog body. Callers compute this once per run and
// reuse it for both social prompts.
func Excerpt(body string) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= excerptLen {
		return string(runes)
	}
	return string(runes[:excerptLen])
}
