package subjects

import "time"

// Subject represents a course taught inside an academic cycle.
type Subject struct {
	ID        int64     `json:"id"`
	CycleID   int64     `json:"cycle_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Credits   int       `json:"credits"`
	TeacherID *int64    `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
