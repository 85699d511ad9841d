package normalize

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// The search provider's XML is regular enough that item blocks and leaf tags
// can be cut out with patterns; no document tree is built.
var (
	itemPattern  = regexp.MustCompile(`(?s)<item\b[^>]*>(.*?)</item>`)
	errorPattern = regexp.MustCompile(`(?s)<error\b[^>]*>(.*?)</error>`)

	tagPatterns sync.Map // tag -> [2]*regexp.Regexp{cdata, plain}
)

func tagRegexps(tag string) [2]*regexp.Regexp {
	if v, ok := tagPatterns.Load(tag); ok {
		return v.([2]*regexp.Regexp)
	}
	q := regexp.QuoteMeta(tag)
	pair := [2]*regexp.Regexp{
		regexp.MustCompile(`(?s)<` + q + `\b[^>]*>\s*<!\[CDATA\[(.*?)\]\]>\s*</` + q + `>`),
		regexp.MustCompile(`(?s)<` + q + `\b[^>]*>(.*?)</` + q + `>`),
	}
	v, _ := tagPatterns.LoadOrStore(tag, pair)
	return v.([2]*regexp.Regexp)
}

// TagValue returns the text of the first <tag> in block, preferring a CDATA
// section. Missing tags yield "".
func TagValue(block, tag string) string {
	re := tagRegexps(tag)
	if m := re[0].FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := re[1].FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(html.UnescapeString(m[1]))
	}
	return ""
}

// XMLItems extracts every <item> block and reads the requested tags from it.
func XMLItems(body string, tags []string) []map[string]string {
	blocks := itemPattern.FindAllStringSubmatch(body, -1)
	out := make([]map[string]string, 0, len(blocks))
	for _, b := range blocks {
		rec := make(map[string]string, len(tags))
		for _, tag := range tags {
			rec[tag] = TagValue(b[1], tag)
		}
		out = append(out, rec)
	}
	return out
}

// XMLError reads the <error> root the provider returns instead of results.
func XMLError(body string) (code, message string, ok bool) {
	m := errorPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return TagValue(m[1], "errorCode"), TagValue(m[1], "errorMessage"), true
}

// ParseInt parses a price-like field. Empty or unparseable input yields nil.
func ParseInt(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
