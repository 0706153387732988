package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"golang.org/x/net/html"
)

// Every function here is pure and total: malformed input comes back as the
// zero value, never as an error or panic.

// ID accepts only a canonical lowercase hyphenated UUID. The input must match
// its own re-encoded form, which rejects braces, URNs, hex-only and
// mixed-case variants. Callers must treat a false result as a 400.
func ID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	if id.String() != raw {
		return uuid.Nil, false
	}
	return id, true
}

// tags whose entire content is dropped, not just the markup
var droppedContent = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"noscript": true,
	"object":   true,
	"embed":    true,
}

var richTextAllowed = map[string]bool{
	"p":  true,
	"br": true,
	"b":  true,
	"i":  true,
	"ul": true,
	"ol": true,
	"li": true,
}

// Text strips all markup and returns inert text. Literal angle brackets in
// the source survive as text, active markup does not.
func Text(raw string) string {
	return strip(raw, nil)
}

// RichText strips markup but keeps a fixed allow-list of structural tags,
// with every attribute removed so no href/src/handler can smuggle a scheme.
func RichText(raw string) string {
	return strip(raw, richTextAllowed)
}

func strip(raw string, allowed map[string]bool) string {
	if raw == "" {
		return ""
	}
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	var dropUntil string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if dropUntil != "" {
				continue
			}
			if droppedContent[tag] && tt == html.StartTagToken {
				dropUntil = tag
				continue
			}
			if allowed[tag] {
				b.WriteString("<" + tag + ">")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if dropUntil != "" {
				if tag == dropUntil {
					dropUntil = ""
				}
				continue
			}
			if allowed[tag] && tag != "br" {
				b.WriteString("</" + tag + ">")
			}
		case html.TextToken:
			if dropUntil != "" {
				continue
			}
			b.WriteString(html.EscapeString(html.UnescapeString(string(z.Text()))))
		}
	}
	return strings.TrimSpace(b.String())
}

// URL accepts http, https and data schemes. Scheme-less input is first tried
// as a site-relative path, then with an https prefix; everything else,
// javascript: included, collapses to the empty string.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err == nil && parsed.Scheme != "" {
		switch strings.ToLower(parsed.Scheme) {
		case "http", "https", "data":
			return raw
		default:
			return ""
		}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#") {
		return Text(raw)
	}
	prefixed, err := url.Parse("https://" + raw)
	if err == nil && strings.Contains(prefixed.Host, ".") {
		return "https://" + raw
	}
	return ""
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color accepts 3- or 6-digit hex with a leading hash, any case.
func Color(raw string) string {
	raw = strings.TrimSpace(raw)
	if colorPattern.MatchString(raw) {
		return raw
	}
	return ""
}

var knownDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func BusinessHours(raw map[string]string) map[string]string {
	out := make(map[string]string)
	for day, hours := range raw {
		key := strings.ToLower(strings.TrimSpace(day))
		if !knownDays[key] {
			continue
		}
		if cleaned := Text(hours); cleaned != "" {
			out[key] = cleaned
		}
	}
	return out
}

var knownPlatforms = map[string]bool{
	"facebook": true, "instagram": true, "twitter": true, "x": true,
	"linkedin": true, "youtube": true, "tiktok": true, "yelp": true,
}

func SocialLinks(raw map[string]string) map[string]string {
	out := make(map[string]string)
	for platform, link := range raw {
		key := strings.ToLower(strings.TrimSpace(platform))
		if !knownPlatforms[key] {
			continue
		}
		if cleaned := URL(link); cleaned != "" {
			out[key] = cleaned
		}
	}
	return out
}

// Testimonials sanitizes each entry and drops those missing an author or a
// quote afterwards.
func Testimonials(raw []dto.TestimonialInput) []dto.TestimonialInput {
	out := make([]dto.TestimonialInput, 0, len(raw))
	for _, t := range raw {
		cleaned := dto.TestimonialInput{
			Author: Text(t.Author),
			Quote:  Text(t.Quote),
			Role:   Text(t.Role),
		}
		if cleaned.Author == "" || cleaned.Quote == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}
