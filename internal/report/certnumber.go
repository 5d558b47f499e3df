package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voltcert/certsync/internal/model"
)

// certificateNumber returns the payload's certificate number, or a
// timestamp-based fallback so every envelope carries one from creation.
func certificateNumber(kind model.ReportKind, payload map[string]any, now time.Time) string {
	if n := payloadString(payload, "certificateNumber"); n != "" {
		return n
	}
	return fmt.Sprintf("%s-%s", kindPrefix(kind), now.Format("20060102-150405"))
}

// newReference builds a globally unique human-readable identifier from
// kind, timestamp and a random suffix.
func newReference(kind model.ReportKind, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%s-%s", kindPrefix(kind), now.Format("20060102T150405"), suffix)
}

func kindPrefix(kind model.ReportKind) string {
	switch kind {
	case model.ReportKindMinorWorks:
		return "MW"
	default:
		return strings.ToUpper(string(kind))
	}
}
