package web

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag         = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag        = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag         = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag      = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag          = regexp.MustCompile(`(?is)<head(\s[^>]*)?>.*?</head>`)
	svgTag           = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	templateTag      = regexp.MustCompile(`(?is)<template[^>]*>.*?</template>`)
	htmlComments     = regexp.MustCompile(`(?s)<!--.*?-->`)
	closeBlocks      = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|nav|header|footer|main|aside)>`)
	openBlocks       = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|nav|header|footer|main|aside)[^>]*>`)
	lineBreaks       = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags          = regexp.MustCompile(`<[^>]+>`)
	horizontalSpaces = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// ExtractTitle returns the decoded contents of the <title> tag, if any.
func ExtractTitle(content string) string {
	matches := titleTag.FindStringSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(matches[1]))
}

// ExtractText reduces an HTML document to its visible text, one block per line.
// Non-rendered elements (scripts, styles, head, svg) are dropped entirely.
func ExtractText(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, templateTag, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlocks.ReplaceAllString(content, "\n")
	content = closeBlocks.ReplaceAllString(content, "\n")
	content = lineBreaks.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = horizontalSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
