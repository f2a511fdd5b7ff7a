package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mewai/internal/generation"
)

var errNoResult = errors.New("no results found or the generation has not finished")

var titleCaser = cases.Title(language.English)

// brandSpellings overrides title casing for names with internal capitals.
var brandSpellings = map[generation.Platform]string{
	generation.PlatformLinkedIn: "LinkedIn",
}

func platformLabel(p generation.Platform) string {
	if label, ok := brandSpellings[p]; ok {
		return label
	}
	return titleCaser.String(string(p))
}

func titleLabel(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

// renderResult writes the blog, social posts, and image links of a finished
// job. Sections without content are skipped.
func renderResult(out io.Writer, result *generation.Result, colorize bool) error {
	if result.IsEmpty() {
		return errNoResult
	}

	if topic := strings.TrimSpace(result.Topic); topic != "" {
		fmt.Fprintf(out, "Topic: %s\n\n", topic)
	}

	if blog := strings.TrimSpace(result.Blog()); blog != "" {
		writeSection(out, platformLabel(generation.PlatformBlog), colorize)
		fmt.Fprintln(out, blog)
		fmt.Fprintln(out)
	}

	for _, platform := range generation.Platforms() {
		if platform == generation.PlatformBlog {
			continue
		}
		post := strings.TrimSpace(result.Social(platform))
		if post == "" {
			continue
		}
		writeSection(out, platformLabel(platform), colorize)
		fmt.Fprintln(out, post)
		fmt.Fprintln(out)
	}

	if len(result.Images) > 0 {
		writeSection(out, "Images", colorize)
		for _, image := range result.Images {
			fmt.Fprintf(out, "- %s\n", image)
		}
	}
	return nil
}

func writeSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}
