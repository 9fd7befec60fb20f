// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/verify-engine/internal/facts"
)

func TestBuildEventNameFirst(t *testing.T) {
	f := &facts.Facts{EventName: "Seoul Jazz Festival"}
	got := Build("", "", f)

	require.NotEmpty(t, got)
	assert.Equal(t, `"Seoul Jazz Festival"`, got[0])
	assert.Equal(t, `"Seoul Jazz Festival" 예매`, got[1])
	assert.LessOrEqual(t, len(got), MaxQueries)
}

func TestCollectAnchorsBrandsFirst(t *testing.T) {
	f := facts.Extract(`“seoul jazz festival” 협찬 “kakao” @jazz_official #jazz 올림픽공원`,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, []string{"kakao"}, f.Brands)

	assert.Equal(t, []string{"kakao", "jazz_official", "#jazz", "올림픽공원", "seoul"}, collectAnchors(f))
}

func TestBuildInvariants(t *testing.T) {
	f := &facts.Facts{
		EventName: strings.Repeat("very long event name ", 10),
		Venue:     "올림픽공원",
		Dates:     []time.Time{time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		Hashtags:  []string{"#jazz"},
		Handles:   []string{"@seouljazz"},
	}
	got := Build("서울 재즈 페스티벌 예매", "티켓 오픈 안내", f)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), MaxQueries)
	seen := map[string]bool{}
	for _, q := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(q), MaxQueryLen)
		assert.False(t, seen[q], "duplicate %q", q)
		assert.NotContains(t, q, "  ")
		assert.NotContains(t, q, `""`)
		seen[q] = true
	}
}

func TestBuildWithoutEventUsesAnchorsAndSites(t *testing.T) {
	f := &facts.Facts{Hashtags: []string{"#jazzfest"}, Handles: []string{"@jazz_official"}}
	got := Build("콘서트 티켓 오픈", "", f)

	assert.Equal(t, []string{
		"#jazzfest 콘서트",
		"jazz_official 공식 공지",
		"site:instagram.com jazz_official",
		"콘서트 site:tickets.interpark.com",
		"콘서트 site:ticket.interpark.com",
		"콘서트 site:interpark.com",
		"concert site:interpark.com",
		"concert site:naver.com",
		"jazz_official 예매",
		"jazz_official 티켓",
		"jazz_official 공지",
		"jazz_official 라인업",
		"jazz_official concert",
		"jazz_official ticket",
		"#jazzfest 예매",
		"#jazzfest 티켓",
		"#jazzfest 공지",
		"#jazzfest 라인업",
		"#jazzfest concert",
		"#jazzfest ticket",
	}, got)
}

func TestBuildFallbackToGenericKeywords(t *testing.T) {
	got := Build("budget vote budget council", "council budget 2026", nil)
	assert.Equal(t, []string{"budget council vote"}, got)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, Build("", "", nil))
	assert.Empty(t, Build("!!! ???", "", &facts.Facts{}))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `"quoted" it's`, sanitize("“quoted” it’s 🎉"))
	assert.Equal(t, "ABC 12", sanitize("ＡＢＣ　１２"))
}

func TestCascadeOrder(t *testing.T) {
	got := Cascade(
		"Jazz Night",
		"Tickets open on Friday for the jazz night at the park, see you all there!",
		"https://www.instagram.com/p/xyz",
		[]string{"jazz", "재즈", "Mixed!", "night"},
	)

	var want []string
	want = append(want, `"Jazz Night"`)
	want = append(want, `"Tickets open on Friday for the jazz night at the park, see y"`)
	for _, kw := range []string{"jazz", "재즈", "night"} {
		for _, tr := range CascadeTriggers {
			want = append(want, kw+" "+tr)
		}
	}
	want = append(want, "site:www.instagram.com 공지", "site:www.instagram.com 이벤트")
	want = append(want, "jazz 재즈", "jazz Mixed!")

	assert.Equal(t, want, got)
}

func TestCascadeSkipsShortText(t *testing.T) {
	got := Cascade("", "short", "", []string{"only"})
	assert.Equal(t, []string{
		"only 이벤트", "only 프로모션", "only 공지", "only 공식",
		"only 모집", "only 무료", "only 당첨", "only 체험단",
	}, got)
}
