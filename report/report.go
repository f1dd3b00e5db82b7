// Package report renders a classified catalog into the fixed Telegram
// Markdown message the delivery layer sends verbatim.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/oxbi/heathfully/catalog"
	"github.com/oxbi/heathfully/models"
)

// DefaultTitle is the report heading used when none is configured.
const DefaultTitle = "🧺 *Healthfully Farm — Availability*"

const nameWidth = 60

// Build renders the catalog into the report message. The structure is
// fixed: title, checked-at line in local time, source line, then the
// two availability sections with counts. Empty sections get their
// placeholder bullet instead of entries, so an empty catalog still
// produces a complete report.
func Build(c *models.Catalog, title string, checkedAt time.Time, sourceURL string) string {
	if title == "" {
		title = DefaultTitle
	}

	lines := []string{
		title,
		fmt.Sprintf("_Checked:_ %s", checkedAt.Format("2006-01-02 15:04 MST")),
		fmt.Sprintf("_Source:_ %s", sourceURL),
		"",
		fmt.Sprintf("✅ In stock (%d):", len(c.InStock)),
	}
	if len(c.InStock) == 0 {
		lines = append(lines, "• _Nothing right now_")
	} else {
		for _, p := range c.InStock {
			lines = append(lines, fmt.Sprintf("• [%s](%s)", catalog.Shorten(p.Name, nameWidth), p.URL))
		}
	}

	lines = append(lines, "", fmt.Sprintf("❌ Out of stock (%d):", len(c.OutOfStock)))
	if len(c.OutOfStock) == 0 {
		lines = append(lines, "• _None shown_")
	} else {
		for _, p := range c.OutOfStock {
			lines = append(lines, "• "+catalog.Shorten(p.Name, nameWidth))
		}
	}

	return strings.Join(lines, "\n")
}
