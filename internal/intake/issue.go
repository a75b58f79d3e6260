package intake

import (
	"fmt"
	"regexp"
	"time"

	"ticketbot/internal/domain"
	"ticketbot/internal/extract"
	"ticketbot/internal/ticket"
)

// Issue draft keys.
const (
	issueEnvironment = "environment"
	issueProduct     = "product"
	issueDate        = "issue_date"
	issueTime        = "issue_time"
	issueOperation   = "operation"
	issueUserID      = "user_id"
	issueBetOrderID  = "bet_order_id"
	issueErrorCode   = "error_code"
	issueSeverity    = "severity"
	fieldSubmitter   = "submitter"
)

// Labels of the issue report template. Matching is case-insensitive and
// tolerant of the separators people paste.
var (
	issueEnvLabel  = regexp.MustCompile(`(?i)environment\s*/?\s*integrator`)
	issueProdLabel = regexp.MustCompile(`(?i)product\s*/?\s*game`)
	issueTimeLabel = regexp.MustCompile(`(?i)(?:issue|incident)\s*found\s*time|time\s*(?:issue|incident)\s*found`)
	issueUserLabel = regexp.MustCompile(`(?i)user\s*id\s*(?:and|&|/)\s*bet\s*order`)
	issueCodeLabel = regexp.MustCompile(`(?i)error\s*code`)
	issueSevLabel  = regexp.MustCompile(`(?i)severity\s*level`)
	issueOpLabel   = regexp.MustCompile(`(?i)problem\s*[:：]?`)

	issueDateTime = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2})`)
)

var issueLabels = []*regexp.Regexp{
	issueEnvLabel, issueProdLabel, issueTimeLabel,
	issueUserLabel, issueCodeLabel, issueSevLabel, issueOpLabel,
}

// IssueSchema describes the issue (bug/incident) category.
func IssueSchema() *Schema {
	return &Schema{
		Tag:       "issue",
		Prefix:    ticket.PrefixIssue,
		FormTitle: "SRE Ticket Record",
		FormIntro: "Please fill in the details of the issue.",
		Fields: []domain.FormField{
			{ID: issueEnvironment, Label: "Environment/Integrator", Kind: domain.FieldChoice, Required: true,
				Options: []string{"production", "staging", "integration", "other"}},
			{ID: issueProduct, Label: "Product/Game", Kind: domain.FieldChoice, Required: true,
				Options: []string{"slots", "table games", "fishing", "other"}},
			{ID: issueDate, Label: "Issue date", Kind: domain.FieldDate, Required: true},
			{ID: issueTime, Label: "Issue time", Kind: domain.FieldTime, Required: true},
			{ID: issueOperation, Label: "Operation when the issue occurred", Kind: domain.FieldMultiline, Required: true},
			{ID: issueUserID, Label: "UserID", Kind: domain.FieldText,
				Placeholder: "e.g. 792f88d3-6836-48e4-82dd-479fc1982286"},
			{ID: issueBetOrderID, Label: "Bet order number", Kind: domain.FieldText,
				Placeholder: "e.g. BET-20251103-001"},
			{ID: issueErrorCode, Label: "Error code", Kind: domain.FieldText,
				Placeholder: "e.g. ERR3331 (optional)"},
			{ID: issueSeverity, Label: "Severity level", Kind: domain.FieldChoice, Required: true,
				Options: []string{"P0", "P1", "P2", "P3"}},
		},
		NewExtractor:  newIssueExtractor,
		ApplyDefaults: issueDefaults,
		Row:           issueRow,
		Facts: []FactSpec{
			{Label: "Submitter", Value: value(fieldSubmitter)},
			{Label: "Environment/Integrator", Value: value(issueEnvironment)},
			{Label: "Product/Game", Value: value(issueProduct)},
			{Label: "Issue found time", Value: func(d Draft) string {
				return d.Get(issueDate) + " " + d.Get(issueTime)
			}},
			{Label: "Severity", Value: value(issueSeverity)},
			{Label: "UserID", Value: value(issueUserID), Optional: true},
			{Label: "Bet order", Value: value(issueBetOrderID), Optional: true},
			{Label: "Error code", Value: value(issueErrorCode), Optional: true},
		},
		BodyKey: issueOperation,
	}
}

func newIssueExtractor(minLabels int) *extract.Extractor {
	fields := []extract.Field{
		{Name: issueEnvironment, Label: issueEnvLabel, Stops: stopsExcept(issueLabels, issueEnvLabel)},
		{Name: issueProduct, Label: issueProdLabel, Stops: stopsExcept(issueLabels, issueProdLabel)},
		{
			Name:  issueDate, // emits both issue_date and issue_time
			Label: issueTimeLabel,
			Stops: stopsExcept(issueLabels, issueTimeLabel),
			Sub:   issueDateTime,
			SubFmt: func(m []string) map[string]string {
				return map[string]string{
					issueDate: fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]),
					issueTime: fmt.Sprintf("%s:%s", m[4], m[5]),
				}
			},
		},
		{Name: issueUserID, Label: issueUserLabel, Stops: stopsExcept(issueLabels, issueUserLabel)},
		{Name: issueErrorCode, Label: issueCodeLabel, Stops: stopsExcept(issueLabels, issueCodeLabel)},
		{Name: issueSeverity, Label: issueSevLabel, Stops: stopsExcept(issueLabels, issueSevLabel)},
		{Name: issueOperation, Label: issueOpLabel, Stops: stopsExcept(issueLabels, issueOpLabel)},
	}
	detection := []*regexp.Regexp{issueEnvLabel, issueProdLabel, issueSevLabel}
	return extract.New(fields, detection, minLabels)
}

func issueDefaults(d Draft, now time.Time) {
	if d.Get(issueDate) == "" {
		d[issueDate] = now.Format("2006-01-02")
	}
	if d.Get(issueTime) == "" {
		d[issueTime] = now.Format("15:04")
	}
}

// issueRow lays the draft into the issue sheet's fixed columns. The last two
// cells (root cause, resolution) are filled by the receiving team.
func issueRow(ticketID string, d Draft, link string, now time.Time) []string {
	return []string{
		ticketID,
		now.Format("2006-01-02 15:04:05"),
		d.Get(issueEnvironment),
		d.Get(issueProduct),
		d.Get(issueDate) + " " + d.Get(issueTime),
		d.Get(issueOperation),
		d.Get(issueUserID),
		d.Get(issueBetOrderID),
		d.Get(issueErrorCode),
		link,
		d.Get(issueSeverity),
		d.Get(fieldSubmitter),
		"",
		"",
	}
}

// stopsExcept returns every known label except the field's own, so a segment
// runs until the next label in the pasted table.
func stopsExcept(labels []*regexp.Regexp, own *regexp.Regexp) []*regexp.Regexp {
	stops := make([]*regexp.Regexp, 0, len(labels)-1)
	for _, l := range labels {
		if l != own {
			stops = append(stops, l)
		}
	}
	return stops
}
