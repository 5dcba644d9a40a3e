// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/fieldtrace/internal/domain/analysis"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// Submission is a parsed trace waiting to be analyzed.
type Submission struct {
	ID         string       // unique id for idempotency
	Team       string       // team number or key
	Match      string       // match key, e.g. "qm12"
	Season     int          // resolved season year
	Trace      *trace.Trace // validated dense trace, never mutated
	ReceivedAt time.Time
}

// MatchReport is the analysis of one submission.
type MatchReport struct {
	SubmissionID string          `json:"submission_id"`
	Team         string          `json:"team"`
	Match        string          `json:"match"`
	Report       analysis.Report `json:"report"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
}

// NewMatchReport pairs a submission with its analysis.
func NewMatchReport(sub Submission, r analysis.Report, at time.Time) MatchReport {
	return MatchReport{
		SubmissionID: sub.ID,
		Team:         sub.Team,
		Match:        sub.Match,
		Report:       r,
		AnalyzedAt:   at,
	}
}
