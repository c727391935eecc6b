package documents

import "time"

// Document statuses. A document enters as pending and is settled exactly
// once by a verifier.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Document is the metadata record of an uploaded portfolio file. The binary
// itself lives in external storage under FileKey.
type Document struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	SubjectID   int64      `json:"subject_id"`
	Title       string     `json:"title"`
	FileKey     string     `json:"file_key"`
	FileName    string     `json:"file_name"`
	Status      string     `json:"status"`
	Observation string     `json:"observation,omitempty"`
	VerifiedBy  *int64     `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
