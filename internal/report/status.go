package report

import (
	"strings"

	"github.com/voltcert/certsync/internal/model"
)

// DeriveStatus computes the envelope lifecycle status from the payload.
// It is a pure function recomputed on every write; status is never
// stored as independent state and never moves backward automatically.
//
//	draft       → in_progress: any of client name, inspection date or
//	              work date present
//	in_progress → completed:   payload status "completed", a
//	              certificate-generated flag, or an overall assessment
//	              together with an inspector signature
func DeriveStatus(payload map[string]any) model.ReportStatus {
	if payloadString(payload, "status") == "completed" ||
		payloadBool(payload, "certificateGenerated") ||
		(payloadString(payload, "overallAssessment") != "" && payloadString(payload, "inspectorSignature") != "") {
		return model.ReportStatusCompleted
	}

	if payloadString(payload, "clientName") != "" ||
		payloadString(payload, "inspectionDate") != "" ||
		payloadString(payload, "workDate") != "" {
		return model.ReportStatusInProgress
	}

	return model.ReportStatusDraft
}

// payloadString reads a trimmed string value from an opaque payload;
// non-string values read as absent.
func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// payloadBool treats bool true and the strings "true"/"yes" as set.
func payloadBool(payload map[string]any, key string) bool {
	if payload == nil {
		return false
	}
	switch v := payload[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes"
	}
	return false
}

// summaryFields holds the denormalized list-view columns extracted from
// a payload on every write.
type summaryFields struct {
	clientName          string
	installationAddress string
	inspectionDate      string
	inspectorName       string
}

func extractSummary(payload map[string]any) summaryFields {
	date := payloadString(payload, "inspectionDate")
	if date == "" {
		date = payloadString(payload, "workDate")
	}
	if date == "" {
		date = payloadString(payload, "installationDate")
	}
	return summaryFields{
		clientName:          payloadString(payload, "clientName"),
		installationAddress: payloadString(payload, "installationAddress"),
		inspectionDate:      date,
		inspectorName:       payloadString(payload, "inspectorName"),
	}
}
