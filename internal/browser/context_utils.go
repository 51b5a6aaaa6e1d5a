// File: internal/browser/context_utils.go
package browser

import "context"

// combineContext derives a context from parentCtx (keeping its values,
// which carry the chromedp target) that is additionally cancelled when
// secondaryCtx is done.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
