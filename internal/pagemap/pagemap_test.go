// File: internal/pagemap/pagemap_test.go
package pagemap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/replay-cli/internal/config"
	"github.com/xkilldash9x/replay-cli/internal/pagemap"
)

func testSite(env string) config.SiteConfig {
	return config.SiteConfig{
		Environment: env,
		BaseURLs: map[string]string{
			"prod": "https://www.chewy.com",
			"qat":  "https://www-qat.chewy.net",
			"dev":  "https://www-dev.chewy.net",
		},
	}
}

func TestRebase(t *testing.T) {
	qat := testSite("qat")

	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "prod URL rebases onto qat",
			raw:      "https://www.chewy.com/dog-food",
			expected: "https://www-qat.chewy.net/dog-food",
		},
		{
			name:     "dev URL rebases onto qat",
			raw:      "https://www-dev.chewy.net/cat-toys",
			expected: "https://www-qat.chewy.net/cat-toys",
		},
		{
			name:     "already on target environment",
			raw:      "https://www-qat.chewy.net/account",
			expected: "https://www-qat.chewy.net/account",
		},
		{
			name:     "query string survives rebasing",
			raw:      "https://www.chewy.com/s?query=dog+food&page=2",
			expected: "https://www-qat.chewy.net/s?query=dog+food&page=2",
		},
		{
			name:     "scheme-less site URL rebases",
			raw:      "www.chewy.com/dog-food",
			expected: "https://www-qat.chewy.net/dog-food",
		},
		{
			name:     "third-party host passes through",
			raw:      "https://zeus-price-ui.example.net/pricing",
			expected: "https://zeus-price-ui.example.net/pricing",
		},
		{
			name:     "sibling brand host passes through",
			raw:      "https://www.chewyhealth.com/insurance",
			expected: "https://www.chewyhealth.com/insurance",
		},
		{
			name:     "absolute path appends to base",
			raw:      "/today-deals",
			expected: "https://www-qat.chewy.net/today-deals",
		},
		{
			name:     "bare relative path appends to base",
			raw:      "today-deals",
			expected: "https://www-qat.chewy.net/today-deals",
		},
		{
			name:     "undefined collapses to base",
			raw:      "undefined",
			expected: "https://www-qat.chewy.net",
		},
		{
			name:     "empty collapses to base",
			raw:      "",
			expected: "https://www-qat.chewy.net",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pagemap.Rebase(tc.raw, qat))
		})
	}
}

func TestParse(t *testing.T) {
	csvData := `PAGE_TYPE,URL
Home,https://www.chewy.com/
Account,https://www.chewy.com/account
Search,/s
Deals,undefined
,https://www.chewy.com/orphan
NoURL,
`

	t.Run("loads and rebases rows", func(t *testing.T) {
		table, err := pagemap.Parse(strings.NewReader(csvData), testSite("dev"))
		require.NoError(t, err)
		assert.Equal(t, 4, table.Len(), "rows with empty page type or URL must be skipped")

		u, ok := table.URL("account")
		require.True(t, ok)
		assert.Equal(t, "https://www-dev.chewy.net/account", u)

		u, ok = table.URL("Search")
		require.True(t, ok, "lookup must be case-insensitive")
		assert.Equal(t, "https://www-dev.chewy.net/s", u)

		u, ok = table.URL("deals")
		require.True(t, ok)
		assert.Equal(t, "https://www-dev.chewy.net", u)

		_, ok = table.URL("checkout")
		assert.False(t, ok)
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		_, err := pagemap.Parse(strings.NewReader("TYPE,LINK\na,b\n"), testSite("dev"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing PAGE_TYPE or URL column")
	})

	t.Run("tolerates extra columns and ragged rows", func(t *testing.T) {
		data := "NOTES,PAGE_TYPE,URL\nx,Home,https://www.chewy.com/\nshort-row\n"
		table, err := pagemap.Parse(strings.NewReader(data), testSite("prod"))
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})
}

func TestLoad_MissingFile(t *testing.T) {
	table := pagemap.Load("/nonexistent/page_types.csv", testSite("prod"), zap.NewNop())
	require.NotNil(t, table)
	assert.Equal(t, 0, table.Len())
}
