package models

import (
	"time"

	id "casevault/pkg/domain"
)

// Evidence is an immutable record attached to a case. FileHash holds the
// ledger transaction id that anchors the evidence metadata.
type Evidence struct {
	ID          id.EvidenceID
	CaseID      id.CaseID
	Title       string
	Description string
	FileHash    string
	UploadedBy  string
	UploadedAt  time.Time
}

// Submission is an upload the server anchors before recording it.
type Submission struct {
	CaseID      id.CaseID
	UploadedBy  string
	Title       string
	Description string
	FileName    string
	Attachment  []byte
	Metadata    map[string]any
}

// Receipt describes where a submission ended up.
type Receipt struct {
	Evidence       *Evidence
	AttachmentHash string
	MetadataHash   string
	TransactionID  string
}
