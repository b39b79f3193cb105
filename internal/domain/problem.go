package domain

import "time"

// Problem issue types produced by the rule evaluator.
const (
	IssueLongHolding  = "ПВД более 30 дней"
	IssueLongHospital = "Госпитализация более 30 дней"
	IssueOverdueLeave = "Просроченный отпуск"
)

// Problem severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// AlertThresholdDays is the strict threshold for the long-stay alerts: a person
// exactly 30 days in is not flagged, 31 days is.
const AlertThresholdDays = 30

// Problem is a flagged anomaly requiring human review. Its lifecycle is
// independent from the subject personnel record: the record may move between
// collections or disappear while the problem stays open until resolved.
type Problem struct {
	ID          int       `db:"id" json:"id"`
	PersonnelID int       `db:"personnel_id" json:"personnel_id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Unit        string    `db:"unit" json:"unit,omitempty"`
	Rank        string    `db:"rank" json:"rank,omitempty"`
	IssueType   string    `db:"issue_type" json:"issue_type"`
	Description string    `db:"description" json:"description"`
	Severity    string    `db:"severity" json:"severity"`
	Resolved    bool      `db:"resolved" json:"resolved"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
