package models

// ImportFile is the JSON export produced by the app admin
// (/api/admin/export-users-wp). Read-only input to the bulk importer.
type ImportFile struct {
	Users []AppUserRecord `json:"users"`
}

// AppUserRecord is a single user entry from the app export. Never mutated.
type AppUserRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone,omitempty"`
	Country      string          `json:"country,omitempty"`
	City         string          `json:"city,omitempty"`
	PasswordHash string          `json:"passwordHash,omitempty"`
	Enrollments  []EnrollmentRef `json:"enrollments,omitempty"`
}

// EnrollmentRef pairs a record with an external course identifier. The
// importer resolves it to a local course through the course mapping.
type EnrollmentRef struct {
	CourseID string `json:"courseId"`
}
