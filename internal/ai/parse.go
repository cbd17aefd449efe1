package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```")

// parseAnalysis extracts the two tip lists from a model response.
func parseAnalysis(text string) (energy, environmental []string, err error) {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, nil, fmt.Errorf("no JSON found in response")
	}

	var raw struct {
		EnergySavingTips  []string `json:"energySavingTips"`
		EnvironmentalTips []string `json:"environmentalTips"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing JSON response: %w", err)
	}
	if len(raw.EnergySavingTips) == 0 && len(raw.EnvironmentalTips) == 0 {
		return nil, nil, fmt.Errorf("response has no tips")
	}
	return raw.EnergySavingTips, raw.EnvironmentalTips, nil
}

var (
	titlePrefix   = regexp.MustCompile(`(?i)^(judul|title):`)
	summaryPrefix = regexp.MustCompile(`(?i)^(ringkasan|summary):`)
	tagsPrefix    = regexp.MustCompile(`(?i)^tags?:`)
	headingPrefix = regexp.MustCompile(`^#+\s*`)
)

var markers = []string{"judul:", "ringkasan:", "tags:", "title:", "summary:"}

// parseDraft turns loosely structured article text into a Draft.
func parseDraft(text string, req DraftRequest) *Draft {
	var title, summary, tags string
	var contentLines []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case titlePrefix.MatchString(line):
			title = strings.TrimSpace(titlePrefix.ReplaceAllString(line, ""))
		case summaryPrefix.MatchString(line):
			summary = strings.TrimSpace(summaryPrefix.ReplaceAllString(line, ""))
		case tagsPrefix.MatchString(line):
			tags = strings.TrimSpace(tagsPrefix.ReplaceAllString(line, ""))
		case !containsAny(lower, markers):
			contentLines = append(contentLines, line)
		}
	}

	content := strings.Join(contentLines, "\n\n")

	if title == "" && len(contentLines) > 0 {
		title = headingPrefix.ReplaceAllString(contentLines[0], "")
		content = strings.Join(contentLines[1:], "\n\n")
	}

	if summary == "" && content != "" {
		first, _, _ := strings.Cut(content, ".")
		summary = first + "."
	}

	if tags == "" {
		tags = strings.Join([]string{"hemat energi", req.Category, "tips", "lingkungan"}, ", ")
	}

	d := &Draft{Title: title, Summary: summary, Content: content, Tags: tags}
	if d.Title == "" {
		d.Title = "Tips Hemat Energi: " + req.Topic
	}
	if d.Summary == "" {
		d.Summary = fmt.Sprintf("Panduan praktis tentang %s untuk menghemat energi.", req.Topic)
	}
	if d.Content == "" {
		d.Content = text
	}
	return d
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
