// Package query turns list-screen filter state into backend request
// parameters. Everything here is pure: the same Filter always yields the
// same url.Values.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"meganote_dashboard/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// Filter is the UI state of a list screen. Toggle means "completed only"
// on the notes screen and "hide inactive" on the users screen.
type Filter struct {
	Search string `json:"filterName"`
	Toggle bool   `json:"toggle"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// Normalized clamps Page and Limit to their defaults when unset.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	return f
}

// Fallback drops the text filter, keeping pagination and the toggle.
func (f Filter) Fallback() Filter {
	f.Search = ""
	return f
}

// Signature identifies the request a filter produces.
func (f Filter) Signature() string {
	f = f.Normalized()
	return fmt.Sprintf("%d|%d|%t|%s", f.Page, f.Limit, f.Toggle, f.Search)
}

func pagination(f Filter) url.Values {
	f = f.Normalized()
	return url.Values{
		"page":  {strconv.Itoa(f.Page)},
		"limit": {strconv.Itoa(f.Limit)},
	}
}

// NoteParams builds the /notes query. Search text containing a digit is
// a ticket lookup; anything else is a term match.
func NoteParams(f Filter) url.Values {
	params := pagination(f)
	if f.Search != "" {
		if ticket, ok := ticketNumber(f.Search); ok {
			params.Set("ticket", strconv.Itoa(ticket))
		} else {
			params.Set("term", f.Search)
		}
	}
	if f.Toggle {
		params.Set("status", string(model.StatusCompleted))
	}
	return params
}

// UserParams builds the /users query. A role name filters by role,
// anything else matches the full name.
func UserParams(f Filter) url.Values {
	params := pagination(f)
	if f.Search != "" {
		if _, ok := model.ParseRole(f.Search); ok {
			params.Set("role", f.Search)
		} else {
			params.Set("fullname", f.Search)
		}
	}
	if f.Toggle {
		params.Set("active", "true")
	}
	return params
}

// ticketNumber classifies s as numeric when it contains a digit and then
// reads its leading integer the way a lenient parser does ("42abc" is 42).
func ticketNumber(s string) (int, bool) {
	if !strings.ContainsFunc(s, isASCIIDigit) {
		return 0, false
	}
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(trimmed) && (trimmed[end] == '-' || trimmed[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(trimmed) && isASCIIDigit(rune(trimmed[end])) {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(trimmed[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
