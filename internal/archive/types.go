package archive

import "time"

const recordVersion = "1.0"

// TranscriptRecord is one captured lead's conversation, stored as JSON.
type TranscriptRecord struct {
	Version         string    `json:"version"`
	LeadID          string    `json:"lead_id"`
	SessionID       string    `json:"session_id,omitempty"`
	ProjectID       string    `json:"project_id,omitempty"`
	Microsite       string    `json:"microsite"`
	PhoneHash       string    `json:"phone_hash"`
	BHKType         string    `json:"bhk_type,omitempty"`
	CTA             string    `json:"cta,omitempty"`
	UTMSource       string    `json:"utm_source,omitempty"`
	ArchivedAt      time.Time `json:"archived_at"`
	DurationSeconds int       `json:"duration_seconds"`
	MessageCount    int       `json:"message_count"`
	Labels          Labels    `json:"labels"`
	Messages        []Message `json:"messages"`
}

// Labels classify a transcript for sales follow-up and model tuning.
type Labels struct {
	Intent          string `json:"intent"`    // site_visit|pricing|brochure|callback|browsing|other
	Timeline        string `json:"timeline"`  // immediate|within_3_months|within_6_months|unknown
	Sentiment       string `json:"sentiment"` // positive|neutral|negative
	BudgetMentioned bool   `json:"budget_mentioned"`
	AutoLabeled     bool   `json:"auto_labeled"`
	LabelModel      string `json:"label_model"`
}

// Message is one transcript line with contact details scrubbed.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ManifestEntry is one JSONL line in the monthly manifest.
type ManifestEntry struct {
	LeadID       string `json:"lead_id"`
	S3Key        string `json:"s3_key"`
	Microsite    string `json:"microsite"`
	Intent       string `json:"intent"`
	ArchivedAt   string `json:"archived_at"`
	MessageCount int    `json:"message_count"`
}
