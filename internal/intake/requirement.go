package intake

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"ticketbot/internal/domain"
	"ticketbot/internal/extract"
	"ticketbot/internal/ticket"
)

// Requirement draft keys.
const (
	reqDepartment = "department"
	reqProduct    = "product"
	reqContact    = "contact"
	reqChannel    = "communication_channel"
	reqDate       = "expected_date"
	reqIssue      = "issue_statement"
	reqDocument   = "document"
	reqReason     = "reason"
	reqDesc       = "description"
)

// Labels of the requirement intake template.
var (
	reqDeptLabel    = regexp.MustCompile(`(?i)request(?:ing)?\s*department`)
	reqProdLabel    = regexp.MustCompile(`(?i)product\s*name`)
	reqContactLabel = regexp.MustCompile(`(?i)contact\s*(?:person|window)`)
	reqChannelLabel = regexp.MustCompile(`(?i)communication\s*channel`)
	reqDateLabel    = regexp.MustCompile(`(?i)expected\s*(?:launch|online)\s*(?:date|time)`)
	reqIssueLabel   = regexp.MustCompile(`(?i)requirement\s*(?:issue|problem)`)
	reqDocLabel     = regexp.MustCompile(`(?i)requirement\s*document`)
	reqReasonLabel  = regexp.MustCompile(`(?i)requirement\s*reason`)
	reqDescLabel    = regexp.MustCompile(`(?i)requirement\s*description`)

	// Accepts 2025/1/2, 2025-01-02 and friends; normalized to YYYY-MM-DD.
	reqDatePattern = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
)

var reqLabels = []*regexp.Regexp{
	reqDeptLabel, reqProdLabel, reqContactLabel, reqChannelLabel,
	reqDateLabel, reqIssueLabel, reqDocLabel, reqReasonLabel, reqDescLabel,
}

// RequirementSchema describes the requirement (feature request) category.
func RequirementSchema() *Schema {
	return &Schema{
		Tag:       "requirement",
		Prefix:    ticket.PrefixRequirement,
		FormTitle: "Requirement Intake",
		FormIntro: "Please fill in the requirement details.",
		Fields: []domain.FormField{
			{ID: reqDepartment, Label: "Requesting department", Kind: domain.FieldText, Required: true},
			{ID: reqProduct, Label: "Product name", Kind: domain.FieldText, Required: true},
			{ID: reqContact, Label: "Contact person", Kind: domain.FieldText, Required: true},
			{ID: reqChannel, Label: "Communication channel", Kind: domain.FieldText,
				Placeholder: "e.g. #product-sync (optional)"},
			{ID: reqDate, Label: "Expected launch date", Kind: domain.FieldDate, Required: true},
			{ID: reqIssue, Label: "Requirement issue", Kind: domain.FieldMultiline, Required: true},
			{ID: reqDocument, Label: "Requirement document", Kind: domain.FieldText,
				Placeholder: "link (optional)"},
			{ID: reqReason, Label: "Requirement reason", Kind: domain.FieldMultiline, Required: true},
			{ID: reqDesc, Label: "Requirement description", Kind: domain.FieldMultiline},
		},
		NewExtractor:  newRequirementExtractor,
		ApplyDefaults: requirementDefaults,
		Row:           requirementRow,
		Facts: []FactSpec{
			{Label: "Submitter", Value: value(fieldSubmitter)},
			{Label: "Department", Value: value(reqDepartment)},
			{Label: "Product", Value: value(reqProduct)},
			{Label: "Contact", Value: value(reqContact)},
			{Label: "Channel", Value: value(reqChannel)},
			{Label: "Expected launch", Value: value(reqDate)},
			{Label: "Document", Value: value(reqDocument), Optional: true},
			{Label: "Reason", Value: value(reqReason), Optional: true},
			{Label: "Description", Value: value(reqDesc), Optional: true},
		},
		BodyKey: reqIssue,
	}
}

func newRequirementExtractor(minLabels int) *extract.Extractor {
	plain := func(name string, label *regexp.Regexp) extract.Field {
		return extract.Field{Name: name, Label: label, Stops: stopsExcept(reqLabels, label)}
	}
	fields := []extract.Field{
		plain(reqDepartment, reqDeptLabel),
		plain(reqProduct, reqProdLabel),
		plain(reqContact, reqContactLabel),
		plain(reqChannel, reqChannelLabel),
		{
			Name:  reqDate,
			Label: reqDateLabel,
			Stops: stopsExcept(reqLabels, reqDateLabel),
			Sub:   reqDatePattern,
			SubFmt: func(m []string) map[string]string {
				return map[string]string{reqDate: normalizeDate(m[1], m[2], m[3])}
			},
		},
		plain(reqIssue, reqIssueLabel),
		plain(reqDocument, reqDocLabel),
		plain(reqReason, reqReasonLabel),
		plain(reqDesc, reqDescLabel),
	}
	detection := []*regexp.Regexp{reqDeptLabel, reqProdLabel, reqIssueLabel}
	return extract.New(fields, detection, minLabels)
}

func requirementDefaults(d Draft, now time.Time) {
	if d.Get(reqChannel) == "" {
		d[reqChannel] = "/"
	}
	if d.Get(reqDate) == "" {
		d[reqDate] = now.Format("2006-01-02")
	}
}

func requirementRow(ticketID string, d Draft, link string, now time.Time) []string {
	return []string{
		ticketID,
		d.Get(reqDepartment),
		d.Get(reqProduct),
		d.Get(reqContact),
		d.Get(reqChannel),
		d.Get(reqDate),
		d.Get(reqIssue),
		d.Get(reqDocument),
		d.Get(reqReason),
		d.Get(reqDesc),
		d.Get(fieldSubmitter),
		now.Format("2006-01-02 15:04:05"),
		link,
	}
}

func normalizeDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}
