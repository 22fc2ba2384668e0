// Package share builds share-intent URLs for reported issues. Everything here
// is a pure string template; no network calls happen in this package.
package share

import (
	"fmt"
	"net/url"

	"civiclens/models"
)

// Options carries the report fields used in share messages.
type Options struct {
	IssueType   string
	Severity    models.Severity
	Description string
	Address     string
	ImageURL    string
	Lat         float64
	Lng         float64
}

// Links bundles the generated share URLs for one report.
type Links struct {
	Twitter  string `json:"twitter"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

func severityEmoji(s models.Severity) string {
	if s.Normalize() == models.SeverityHigh {
		return "🚨"
	}
	return "⚠️"
}

// TwitterURL generates a tweet intent with a pre-filled message.
func TwitterURL(opts Options) string {
	photo := ""
	if opts.ImageURL != "" {
		photo = "📸 Photo attached"
	}
	text := fmt.Sprintf(`%s Found a %s Severity %s at %s.

"%s"

Help our city by fixing this! Use #CivicLens to report civic issues. %s`,
		severityEmoji(opts.Severity), opts.Severity, opts.IssueType, opts.Address,
		opts.Description, photo)

	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(text) +
		"&hashtags=CivicLens,FixOurCity"
}

// EmailURL generates a mailto link addressed to the municipal corporation.
func EmailURL(opts Options) string {
	subject := fmt.Sprintf("URGENT: %s Severity %s at %s", opts.Severity, opts.IssueType, opts.Address)
	body := fmt.Sprintf(`Dear Municipal Corporation,

I am reporting a %s severity civic issue that needs immediate attention:

Issue Type: %s
Location: %s
Coordinates: %v, %v
Description: %s

This issue has been reported through CivicLens - a citizen civic reporting platform.

Please take necessary action to resolve this issue.

Regards,
A Concerned Citizen`,
		opts.Severity, opts.IssueType, opts.Address, opts.Lat, opts.Lng, opts.Description)

	return "mailto:complaint@municipalcorp.gov?subject=" + url.QueryEscape(subject) +
		"&body=" + url.QueryEscape(body)
}

// WhatsAppURL generates a wa.me share link.
func WhatsAppURL(opts Options) string {
	text := fmt.Sprintf("🚨 Civic Issue Alert!\n\nType: %s\nSeverity: %s\nLocation: %s\n\nDescription: %s\n\nReported via CivicLens 📍",
		opts.IssueType, opts.Severity, opts.Address, opts.Description)
	return "https://wa.me/?text=" + url.QueryEscape(text)
}

// All generates every share link for a report.
func All(opts Options) Links {
	return Links{
		Twitter:  TwitterURL(opts),
		Email:    EmailURL(opts),
		WhatsApp: WhatsAppURL(opts),
	}
}
