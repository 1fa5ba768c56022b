// Package tasklist turns free-form model output into a fixed-size list of task titles.
//
// The cleanup rules are tuned against the prompt built by Prompt; changing one means
// revalidating the other.
package tasklist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fastygo/learnpath/domain"
)

// Size is the number of entries Normalize always returns.
const Size = 5

var (
	lineBreak = regexp.MustCompile(`\r\n|\r|\n`)
	marker    = regexp.MustCompile(`^(?:[-*•]\s*|\d+[.)]\s+)`)
	label     = regexp.MustCompile(`(?i)^(?:task|step)\b\s*(?:\d+)?\s*[:.]?\s*`)
)

// Normalize cleans raw generated text into exactly Size titles, padding with
// synthetic study entries for topic when the model returned fewer.
func Normalize(raw, topic string) ([]string, error) {
	tasks := make([]string, 0, Size)
	for _, line := range lineBreak.Split(raw, -1) {
		if len(tasks) == Size {
			break
		}
		if cleaned := cleanLine(line); cleaned != "" {
			tasks = append(tasks, cleaned)
		}
	}

	for len(tasks) < Size {
		tasks = append(tasks, Filler(topic, len(tasks)+1))
	}

	for _, t := range tasks {
		if strings.TrimSpace(t) == "" {
			return nil, domain.ErrEmptyGeneration
		}
	}
	return tasks, nil
}

// Filler returns the synthetic entry used for position n (1-based).
func Filler(topic string, n int) string {
	return fmt.Sprintf("Study %s fundamentals - Part %d", topic, n)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = marker.ReplaceAllString(line, "")
	line = label.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// Prompt builds the generation request for topic.
func Prompt(topic string) string {
	return fmt.Sprintf(`Create %d specific, actionable learning tasks for %s. Each task should be:
- Clear and concise
- Practical and achievable
- Focused on a single learning objective
- Written in an active voice
Format as plain text, one task per line.`, Size, topic)
}
