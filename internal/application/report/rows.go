package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
)

// adjustedDateLayouts are tried in order
var adjustedDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05-07:00",
}

func parseAdjustedDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range adjustedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid adjusted date %q", raw)
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
