package models

import "time"

// Resource is the persisted view of one monitored URL.
type Resource struct {
	Description string    `json:"description,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	StatusCode  int       `json:"status_code"`
	LastChecked time.Time `json:"last_checked,omitempty"`
}

// IsReachable reports whether the last fetch returned a 2xx or 3xx status.
func (r Resource) IsReachable() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// ChangeKind classifies a ChangeRecord.
type ChangeKind string

const (
	ChangeKindNew         ChangeKind = "new"
	ChangeKindModified    ChangeKind = "modified"
	ChangeKindUnavailable ChangeKind = "unavailable"
)

// ChangeRecord is produced once per cycle for a resource that appeared, changed or
// became unreachable. It is never persisted.
type ChangeRecord struct {
	ProviderKey    string     `json:"provider_key"`
	ProviderName   string     `json:"provider_name"`
	URL            string     `json:"url"`
	Description    string     `json:"description,omitempty"`
	Kind           ChangeKind `json:"kind"`
	Content        string     `json:"content,omitempty"` // normalized text, only for new and modified
	PreviousHash   string     `json:"previous_hash,omitempty"`
	CurrentHash    string     `json:"current_hash,omitempty"`
	PreviousStatus int        `json:"previous_status"`
	CurrentStatus  int        `json:"current_status"`
}

// HasContent reports whether the record carries content for classification.
func (r ChangeRecord) HasContent() bool {
	return r.Kind == ChangeKindNew || r.Kind == ChangeKindModified
}

// GroupByProvider splits records with content by provider key, preserving order.
// Unavailable records are returned separately.
func GroupByProvider(records []ChangeRecord) (map[string][]ChangeRecord, []string, []ChangeRecord) {
	grouped := make(map[string][]ChangeRecord)
	var order []string
	var unavailable []ChangeRecord

	for _, r := range records {
		if !r.HasContent() {
			if r.Kind == ChangeKindUnavailable {
				unavailable = append(unavailable, r)
			}
			continue
		}
		if _, seen := grouped[r.ProviderKey]; !seen {
			order = append(order, r.ProviderKey)
		}
		grouped[r.ProviderKey] = append(grouped[r.ProviderKey], r)
	}
	return grouped, order, unavailable
}
