package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	inputs := [][]byte{nil, []byte(""), []byte("hello"), []byte("<html><body>x</body></html>")}
	for _, in := range inputs {
		assert.Equal(t, Fingerprint(in, 16), Fingerprint(in, 16))
	}
	assert.Len(t, Fingerprint([]byte("abc"), 16), 16)
	assert.Len(t, Fingerprint([]byte("abc"), 0), 64)
	assert.Len(t, Fingerprint([]byte("abc"), 100), 64)
	assert.Equal(t, Fingerprint([]byte("abc"), 0)[:8], Fingerprint([]byte("abc"), 8))
}

func TestFingerprint_IgnoresTimestamps(t *testing.T) {
	a := []byte("<p>Updated: 2024-01-01T10:00:00</p><p>Body</p>")
	b := []byte("<p>Updated: 2024-06-02T11:30:00</p><p>Body</p>")
	assert.Equal(t, Fingerprint(a, 16), Fingerprint(b, 16))

	variants := []string{
		"Updated 2024-06-02 11:30",
		"Updated 2024-06-02T11:30:59.123Z",
		"Updated 2024-06-02T11:30:59+07:00",
		"Updated 2024-06-02T11:30:59-0500",
	}
	for _, v := range variants {
		assert.Equal(t, "Updated "+TimestampPlaceholder, Canonicalize([]byte(v)), v)
	}
}

func TestFingerprint_IgnoresLabeledUpdateDates(t *testing.T) {
	a := []byte("<p>Last updated: 2024-06-02</p><p>Body</p>")
	b := []byte("<p>Last updated: 2024-06-03</p><p>Body</p>")
	assert.Equal(t, Fingerprint(a, 16), Fingerprint(b, 16))

	tests := []struct {
		in   string
		want string
	}{
		{"Last updated: 2024-06-02", "Last updated: " + TimestampPlaceholder},
		{"Updated June 2, 2024 by the team", "Updated " + TimestampPlaceholder + " by the team"},
		{"last modified on Jun. 12 2024", "last modified on " + TimestampPlaceholder},
		{"Revised 2023-12-31.", "Revised " + TimestampPlaceholder + "."},
		{"Released 2024-06-02", "Released 2024-06-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize([]byte(tt.in)), tt.in)
	}

	// the date is still significant when it is not an update stamp
	assert.NotEqual(t,
		Fingerprint([]byte("Last updated: 2024-06-02. Sunset on 2024-09-01"), 16),
		Fingerprint([]byte("Last updated: 2024-06-02. Sunset on 2024-10-01"), 16))
}

func TestFingerprint_IgnoresWhitespace(t *testing.T) {
	a := []byte("hello   world\n\n\tfoo")
	b := []byte("  hello world foo  ")
	assert.Equal(t, Fingerprint(a, 16), Fingerprint(b, 16))
}

func TestFingerprint_DetectsRealChanges(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]byte("version 1"), 16), Fingerprint([]byte("version 2"), 16))
	// a bare date is content, not a rendered timestamp
	assert.NotEqual(t, Fingerprint([]byte("released 2024-01-01"), 16), Fingerprint([]byte("released 2024-02-01"), 16))
}

func TestNormalize(t *testing.T) {
	raw := []byte(`<!DOCTYPE html>
<html><head><title>Changelog</title><style>body{color:red}</style>
<script>var x = "<p>not text</p>";</script></head>
<body>
  <h1>API   Changes</h1>
  <p>The <b>v1</b> endpoint is &amp; will be <em>deprecated</em>.</p>
  <!-- comment -->
  <ul><li>First</li><li>Second</li></ul>
  <noscript>enable js</noscript>
</body></html>`)

	got := Normalize(raw)
	assert.Equal(t, "Changelog\nAPI Changes\nThe v1 endpoint is & will be deprecated.\nFirst\nSecond", got)
	assert.Equal(t, got, Normalize(raw))
}

func TestNormalize_RSSWithCDATA(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>Acme API</title>
  <item>
    <title><![CDATA[Removal of /v1/foo]]></title>
    <description><![CDATA[<p>The <code>/v1/foo</code> endpoint is removed on 2025-01-01.</p>]]></description>
  </item>
</channel></rss>`)

	got := Normalize(raw)
	assert.Contains(t, got, "Removal of /v1/foo")
	assert.Contains(t, got, "The /v1/foo endpoint is removed on 2025-01-01.")
	assert.NotContains(t, got, "]]>")
	assert.NotContains(t, got, "CDATA")
	assert.NotContains(t, got, "<p>")
}

func TestNormalize_AtomEscapedHTML(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Acme changelog</title>
  <entry>
    <title>Endpoint removal</title>
    <content type="html">&lt;p&gt;Endpoint /v1/foo removed&lt;/p&gt;&lt;script&gt;track()&lt;/script&gt;</content>
  </entry>
</feed>`)

	got := Normalize(raw)
	assert.Contains(t, got, "Endpoint /v1/foo removed")
	assert.NotContains(t, got, "<p>")
	assert.NotContains(t, got, "track()")
}

func TestNormalize_EscapedMarkupInHTMLStaysText(t *testing.T) {
	raw := []byte(`<html><body><pre>&lt;div&gt;example&lt;/div&gt;</pre></body></html>`)
	assert.Equal(t, "<div>example</div>", Normalize(raw))
}

func TestNormalize_PlainText(t *testing.T) {
	assert.Equal(t, "just some text\nsecond line", Normalize([]byte("  just   some text \n\n second line ")))
	assert.Equal(t, "", Normalize(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "日本", Truncate("日本語", 2))
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("HTTPS://Example.COM/Docs/Changelog#top")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/Docs/Changelog", got)

	got, err = NormalizeURL("example.com/path")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/path", got)

	_, err = NormalizeURL("   ")
	assert.Error(t, err)
}
