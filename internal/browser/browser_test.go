// File: internal/browser/browser_test.go
package browser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/replay-cli/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestJSString(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain selector", `#search-autocomplete`, `"#search-autocomplete"`},
		{"embedded double quotes", `[data-testid="cart"]`, `"[data-testid=\"cart\"]"`},
		{"embedded single quotes", `[aria-label='Cart']`, `"[aria-label='Cart']"`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, jsString(tc.in))
		})
	}
}

func TestExecOptions(t *testing.T) {
	base := config.NewDefaultConfig()
	baseline := len(execOptions(base))

	t.Run("headless adds an option", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.SetBrowserHeadless(false)
		headful := len(execOptions(cfg))
		cfg.SetBrowserHeadless(true)
		assert.Equal(t, headful+1, len(execOptions(cfg)))
	})

	t.Run("extra args become flags", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.BrowserCfg.Args = []string{"--no-zygote", "lang=en-US", "--proxy-server=localhost:8080"}
		assert.Equal(t, baseline+3, len(execOptions(cfg)))
	})

	t.Run("user agent adds an option", func(t *testing.T) {
		cfg := config.NewDefaultConfig()
		cfg.BrowserCfg.UserAgent = "replay-bot/1.0"
		assert.Equal(t, baseline+1, len(execOptions(cfg)))
	})
}

func TestNormalizeFlag(t *testing.T) {
	assert.Equal(t, "no-zygote", normalizeFlag("--no-zygote"))
	assert.Equal(t, "no-zygote", normalizeFlag("no-zygote"))
	assert.Equal(t, "proxy-server", normalizeFlag("-proxy-server"))
}

func TestNetworkMonitor_WaitIdle(t *testing.T) {
	t.Run("idle once quiet window elapses", func(t *testing.T) {
		m := newNetworkMonitor()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		require.NoError(t, m.WaitIdle(ctx, 10*time.Millisecond))
	})

	t.Run("in-flight request blocks idle", func(t *testing.T) {
		m := newNetworkMonitor()
		m.handle(&network.EventRequestWillBeSent{RequestID: "req-1"})

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()
		err := m.WaitIdle(ctx, 10*time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("finished request unblocks idle", func(t *testing.T) {
		m := newNetworkMonitor()
		m.handle(&network.EventRequestWillBeSent{RequestID: "req-1"})

		go func() {
			time.Sleep(50 * time.Millisecond)
			m.handle(&network.EventLoadingFinished{RequestID: "req-1"})
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, m.WaitIdle(ctx, 10*time.Millisecond))
	})

	t.Run("failed request also counts as settled", func(t *testing.T) {
		m := newNetworkMonitor()
		m.handle(&network.EventRequestWillBeSent{RequestID: "req-1"})
		m.handle(&network.EventLoadingFailed{RequestID: "req-1"})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, m.WaitIdle(ctx, 10*time.Millisecond))
	})

	t.Run("reset clears stale requests", func(t *testing.T) {
		m := newNetworkMonitor()
		m.handle(&network.EventRequestWillBeSent{RequestID: "stale"})
		m.reset()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, m.WaitIdle(ctx, 10*time.Millisecond))
	})
}

func TestCombineContext(t *testing.T) {
	t.Run("secondary cancellation propagates", func(t *testing.T) {
		parent := context.Background()
		secondary, cancelSecondary := context.WithCancel(context.Background())

		combined, cancel := combineContext(parent, secondary)
		defer cancel()

		cancelSecondary()
		select {
		case <-combined.Done():
		case <-time.After(time.Second):
			t.Fatal("combined context did not observe secondary cancellation")
		}
	})

	t.Run("parent values survive", func(t *testing.T) {
		type key struct{}
		parent := context.WithValue(context.Background(), key{}, "v")
		combined, cancel := combineContext(parent, context.Background())
		defer cancel()

		assert.Equal(t, "v", combined.Value(key{}))
	})
}

func TestInteractionScripts(t *testing.T) {
	// The scripts are format templates; make sure the placeholder counts
	// stay in sync with how the session fills them.
	assert.Equal(t, 1, strings.Count(visibleScript, "%s"))
	assert.Equal(t, 1, strings.Count(visibleScript, "%d"))
	assert.Equal(t, 1, strings.Count(clickScript, "%d"))
	assert.Equal(t, 1, strings.Count(countTextScript, "%s"))
	assert.Equal(t, 0, strings.Count(countTextScript, "%d"))
	assert.Equal(t, 1, strings.Count(clickTextScript, "%s"))
	assert.Equal(t, 1, strings.Count(clickTextScript, "%d"))
	assert.Equal(t, 1, strings.Count(textContentAtScript, "%d"))
	assert.Equal(t, 1, strings.Count(hoverTextScript, "%s"))
	assert.Equal(t, 1, strings.Count(hoverTextScript, "%d"))
}
