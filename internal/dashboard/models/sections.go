package models

import "time"

// StageStatus is the state of one pipeline stage.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageRunning StageStatus = "running"
	StagePassed  StageStatus = "passed"
	StageFailed  StageStatus = "failed"
)

func (s StageStatus) Valid() bool {
	switch s {
	case StagePending, StageRunning, StagePassed, StageFailed:
		return true
	}
	return false
}

// PipelineStage is one step of the processing pipeline. Stage order is the
// pipeline sequence and is never re-sorted.
type PipelineStage struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Status    StageStatus `json:"status"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty"`
	Link      string      `json:"link,omitempty"`
}

// GovernanceFlag is a finding raised by the governance gate.
type GovernanceFlag struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Remediation string   `json:"remediation,omitempty"`
}

// Recommendation is a learning pathway suggestion for the current user.
type Recommendation struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

// Grade buckets provider reliability.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeF Grade = "F"
)

// GradeFor applies the backend grading thresholds.
func GradeFor(reliability float64) Grade {
	switch {
	case reliability >= 0.99:
		return GradeA
	case reliability >= 0.95:
		return GradeB
	case reliability >= 0.90:
		return GradeC
	default:
		return GradeF
	}
}

// ProviderScore is the reliability summary for one provider. Field names
// follow the backend payload.
type ProviderScore struct {
	ProviderID      string  `json:"provider_id"`
	Reliability     float64 `json:"reliability"`
	TotalActivities int     `json:"total_activities"`
	ErrorCount      int     `json:"error_count"`
	Grade           Grade   `json:"grade"`
}

// AdvisorSignal is an explainable recommendation from the advisor feed.
type AdvisorSignal struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Severity     Severity `json:"severity"`
	WhyNow       string   `json:"whyNow"`
	Evidence     []string `json:"evidence"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives"`
}

// CertificateMeta describes an issued certificate.
type CertificateMeta struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IssuedAt    time.Time `json:"issuedAt"`
	Hash        string    `json:"hash"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

// DefaultPipelineStages is the pipeline shape shown before any stage data has
// been pushed: governance gate, ingestion, extraction, unified output.
func DefaultPipelineStages(lastRun *time.Time) []PipelineStage {
	return []PipelineStage{
		{ID: "governance", Label: "Governance Gate", Status: StagePending, UpdatedAt: cloneTime(lastRun), Link: "/output/governance_report.json"},
		{ID: "ingestion", Label: "Schema Ingestion", Status: StagePending},
		{ID: "extraction", Label: "MVP Extraction", Status: StagePending},
		{ID: "unified", Label: "Unified Output", Status: StagePending, Link: "/output/pipeline_results.json"},
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
