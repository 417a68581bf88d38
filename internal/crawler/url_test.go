package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips query and fragment", "https://ru.wikipedia.org/wiki/Go?action=view#History", "https://ru.wikipedia.org/wiki/Go"},
		{"decodes percent encoding", "https://ru.wikipedia.org/wiki/%D0%A0%D0%BE%D1%81%D1%81%D0%B8%D1%8F", "https://ru.wikipedia.org/wiki/Россия"},
		{"lowercases host", "HTTPS://RU.Wikipedia.org/wiki/Go", "https://ru.wikipedia.org/wiki/Go"},
		{"drops default port", "https://example.org:443/wiki/Go", "https://example.org/wiki/Go"},
		{"keeps custom port", "http://127.0.0.1:8080/wiki/Go", "http://127.0.0.1:8080/wiki/Go"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURLSameIdentity(t *testing.T) {
	a, err := NormalizeURL("https://ru.wikipedia.org/wiki/%D0%93%D0%BE")
	require.NoError(t, err)
	b, err := NormalizeURL("https://ru.wikipedia.org/wiki/Го#section")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNormalizeURLRejectsRelative(t *testing.T) {
	_, err := NormalizeURL("/wiki/Go")
	require.Error(t, err)
	_, err = NormalizeURL("http://%zz")
	require.Error(t, err)
}

func TestLinkRules(t *testing.T) {
	rules := NewLinkRules("/wiki/", []string{"Служебная:", "action=edit"}, []string{"wikipedia.org"})

	require.True(t, rules.Valid("https://ru.wikipedia.org/wiki/Go"))
	require.False(t, rules.Valid("ftp://ru.wikipedia.org/wiki/Go"), "scheme must be http(s)")
	require.False(t, rules.Valid("https://example.org/wiki/Go"), "host must be allowed")
	require.False(t, rules.Valid("https://ru.wikipedia.org/w/index.php?title=Go"), "path must be an article path")
	require.False(t, rules.Valid("https://ru.wikipedia.org/wiki/Go?action=edit"))
	require.False(t, rules.Valid("https://ru.wikipedia.org/wiki/%D0%A1%D0%BB%D1%83%D0%B6%D0%B5%D0%B1%D0%BD%D0%B0%D1%8F:Search"),
		"decoded exclusions must match encoded links")
}

func TestLinkRulesWithoutDomainsAllowsAnyHost(t *testing.T) {
	rules := NewLinkRules("/wiki/", nil, nil)
	require.True(t, rules.Valid("http://127.0.0.1:5555/wiki/Go"))
}

func TestDomainMatcher(t *testing.T) {
	t.Run("bare domain matches subdomains", func(t *testing.T) {
		m := newDomainMatcher([]string{"wikipedia.org"})
		require.True(t, m.Matches("wikipedia.org"))
		require.True(t, m.Matches("RU.wikipedia.org"))
		require.False(t, m.Matches("notwikipedia.org"))
	})

	t.Run("wildcard suffix", func(t *testing.T) {
		m := newDomainMatcher([]string{"*.ru"})
		require.True(t, m.Matches("cyberleninka.ru"))
		require.True(t, m.Matches("ru"))
		require.False(t, m.Matches("example.com"))
	})

	t.Run("nil matcher allows everything", func(t *testing.T) {
		var m *domainMatcher
		require.True(t, m.Matches("anything"))
		require.Nil(t, newDomainMatcher([]string{" ", ""}))
	})
}
