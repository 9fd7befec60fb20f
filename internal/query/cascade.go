// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CascadeTriggers are paired with every eligible keyword in the fallback cascade.
var CascadeTriggers = []string{"이벤트", "프로모션", "공지", "공식", "모집", "무료", "당첨", "체험단"}

const (
	minSnippetLen = 10
	maxSnippetLen = 60
)

var (
	latinKeyword  = regexp.MustCompile(`^[a-z0-9_.]{2,}$`)
	hangulKeyword = regexp.MustCompile(`^[가-힣]{2,}$`)
)

// Cascade returns the fallback queries tried, in order, when the primary
// query returns nothing: the quoted title, a quoted text snippet of at most
// 60 runes, each keyword paired with each trigger word, site-restricted
// queries on the source host, and keyword pairs. The order is significant;
// callers stop at the first query that returns results.
func Cascade(title, text, sourceURL string, keywords []string) []string {
	qs := newOrderedSet()

	if t := strings.TrimSpace(title); t != "" {
		qs.add(`"` + t + `"`)
	}
	if t := strings.TrimSpace(text); utf8.RuneCountInString(t) >= minSnippetLen {
		if r := []rune(t); len(r) > maxSnippetLen {
			t = string(r[:maxSnippetLen])
		}
		qs.add(`"` + t + `"`)
	}

	for _, kw := range keywords {
		if !latinKeyword.MatchString(kw) && !hangulKeyword.MatchString(kw) {
			continue
		}
		for _, tr := range CascadeTriggers {
			qs.add(kw + " " + tr)
		}
	}

	if host := sourceHost(sourceURL); host != "" {
		qs.add("site:" + host + " 공지")
		qs.add("site:" + host + " 이벤트")
	}

	if len(keywords) >= 2 {
		qs.add(keywords[0] + " " + keywords[1])
	}
	if len(keywords) >= 3 {
		qs.add(keywords[0] + " " + keywords[2])
	}
	return qs.items
}

func sourceHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}
