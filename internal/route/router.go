// Package route maps an inbound message's channel identity to a configured
// ticket category and checks the category's trigger keywords.
package route

import (
	"log/slog"
	"regexp"
	"strings"

	"ticketbot/internal/config"
)

// Router resolves channel identity against the configured categories.
// Configuration order is significant: first match wins. Categories are
// expected, not enforced, to be mutually exclusive.
type Router struct {
	categories []config.Category
	patterns   []*regexp.Regexp // compiled wildcard pattern per category, nil when the name has no wildcard
	logger     *slog.Logger
}

// New builds a Router. Category names containing '*' are compiled into
// anchored, case-insensitive wildcard patterns up front.
func New(categories []config.Category, logger *slog.Logger) *Router {
	patterns := make([]*regexp.Regexp, len(categories))
	for i, cat := range categories {
		if strings.Contains(cat.Name, "*") {
			patterns[i] = compileWildcard(cat.Name)
		}
	}
	return &Router{categories: categories, patterns: patterns, logger: logger}
}

// Resolve returns the first category matching the channel, trying per
// category: the channel-id allow-list, then the wildcard name pattern, then
// case-insensitive containment of the configured name. A miss means the
// message is ignored upstream, not errored.
func (r *Router) Resolve(channelName, channelID string) (config.Category, bool) {
	for i, cat := range r.categories {
		if len(cat.ChannelIDs) > 0 && channelID != "" {
			for _, id := range cat.ChannelIDs {
				if id == channelID {
					r.logger.Debug("category matched by channel id", "category", cat.Tag, "channel_id", channelID)
					return cat, true
				}
			}
		}
		if r.patterns[i] != nil {
			if r.patterns[i].MatchString(channelName) {
				r.logger.Debug("category matched by wildcard", "category", cat.Tag, "channel", channelName)
				return cat, true
			}
			continue
		}
		if cat.Name != "" && strings.Contains(strings.ToLower(channelName), strings.ToLower(cat.Name)) {
			r.logger.Debug("category matched by name", "category", cat.Tag, "channel", channelName)
			return cat, true
		}
	}
	return config.Category{}, false
}

// HasRequiredKeywords reports whether every keyword appears as a
// case-insensitive substring of text. Order of appearance is irrelevant.
func HasRequiredKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// compileWildcard turns a name like "*foo*" into an anchored pattern where
// '*' matches any characters.
func compileWildcard(name string) *regexp.Regexp {
	parts := strings.Split(name, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)^` + strings.Join(parts, ".*") + `$`)
}
