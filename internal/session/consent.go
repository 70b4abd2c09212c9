package session

import (
	"context"

	"github.com/riskibarqy/fantasy-league-scraper/internal/extraction"
	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
)

// DismissConsent clicks every short clickable element whose label matches a
// consent keyword and returns how many clicks landed. Click failures are
// logged and skipped.
func DismissConsent(ctx context.Context, b Browser, rules extraction.ConsentRules, logger *logging.Logger) int {
	if logger == nil {
		logger = logging.Default()
	}
	if rules.ClickableSelector == "" || len(rules.Keywords) == 0 {
		return 0
	}

	elements, err := b.FindElements(ctx, rules.ClickableSelector)
	if err != nil {
		logger.DebugContext(ctx, "scan consent overlay failed", "error", err)
		return 0
	}

	clicked := 0
	for _, el := range elements {
		label := extraction.CleanText(el.Text)
		if label == "" || (rules.MaxTextLength > 0 && len(label) > rules.MaxTextLength) {
			continue
		}
		if !extraction.HasWord(label, rules.Keywords) {
			continue
		}
		if err := b.Click(ctx, el.Selector); err != nil {
			logger.DebugContext(ctx, "consent click failed", "label", label, "error", err)
			continue
		}
		clicked++
	}
	if clicked > 0 {
		logger.InfoContext(ctx, "consent overlay dismissed", "clicks", clicked)
	}
	return clicked
}
