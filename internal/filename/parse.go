// Package filename extracts a probable title, release year and TV-series hint
// from raw media file names such as "Inception.2010.1080p.BluRay.x264.mkv".
package filename

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the result of Parse. Year is empty when no plausible year was
// found.
type Parsed struct {
	Title string
	Year  string
	IsTV  bool
}

var junkTokens = []string{
	"1080p", "720p", "480p", "4k", "2160p", "UHD", "HDR", "Bluray", "WebRip",
	"Web-DL", "HDTV", "CAM", "TS", "H264", "H265", "x264", "x265", "AAC",
	"DDP5", "PSA", "RARBG", "YIFY",
}

var (
	extRE       = regexp.MustCompile(`^\.[A-Za-z][A-Za-z0-9]{1,3}$`)
	seasonExtRE = regexp.MustCompile(`(?i)^\.s\d+$`)
	separatorRE = regexp.MustCompile(`[._\[\]()]`)
	seasonRE    = regexp.MustCompile(`(?i)\b(?:S\d+(?:E\d+)?|Season)\b`)
	yearRE      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	spaceRE     = regexp.MustCompile(`\s+`)
	junkRE      = compileJunk(junkTokens)
)

func compileJunk(tokens []string) *regexp.Regexp {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Parse never fails: when nothing useful is left after cleanup the title
// falls back to the name without its extension, and then to the raw name.
func Parse(name string) Parsed {
	return parse(name, stripExt(name))
}

// ParseDir is Parse for folder names, which carry no extension: "Doctor.Who"
// keeps both words.
func ParseDir(name string) Parsed {
	return parse(name, name)
}

func parse(name, stem string) Parsed {
	text := separatorRE.ReplaceAllString(stem, " ")

	var p Parsed
	p.IsTV = seasonRE.MatchString(text)

	// A year at the very start is part of the title ("1917", "2012").
	for _, loc := range yearRE.FindAllStringIndex(text, -1) {
		if strings.TrimSpace(text[:loc[0]]) == "" {
			continue
		}
		if y, err := strconv.Atoi(text[loc[0]:loc[1]]); err == nil && y >= 1900 && y <= 2099 {
			p.Year = text[loc[0]:loc[1]]
			text = text[:loc[0]]
			break
		}
	}

	text = junkRE.ReplaceAllString(text, " ")
	text = spaceRE.ReplaceAllString(text, " ")
	p.Title = strings.Trim(text, " -")

	if p.Title == "" {
		p.Title = strings.TrimSpace(stem)
	}
	if p.Title == "" {
		p.Title = name
	}

	return p
}

// stripExt removes a trailing file extension. Suffixes that look like a year
// or a season marker ("Show.S01", "Movies.2010") are kept.
func stripExt(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || !extRE.MatchString(ext) || seasonExtRE.MatchString(ext) {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
