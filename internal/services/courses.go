package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

// Courses is the optional LMS capability. The importer talks to whichever
// implementation was wired at composition time; when the LMS subsystem is not
// deployed, NoopCourses stands in and every enrollment reference is skipped
// silently.
type Courses interface {
	// CourseMapping returns external-course-id -> local course id for all
	// published courses. The explicit external-id attribute is entered first;
	// the slug is entered as a fallback key.
	CourseMapping(ctx context.Context) (map[string]uuid.UUID, error)

	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)

	// Enroll enrolls idempotently. Returns true only when a new enrollment
	// record was actually created.
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (bool, error)

	// GrantLearnerRole gives a newly imported user the elevated learner role.
	GrantLearnerRole(ctx context.Context, userID uuid.UUID) error
}

// NoopCourses is the null implementation used when no LMS is available.
type NoopCourses struct{}

func (NoopCourses) CourseMapping(ctx context.Context) (map[string]uuid.UUID, error) {
	return nil, nil
}

func (NoopCourses) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return false, nil
}

func (NoopCourses) Enroll(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return false, nil
}

func (NoopCourses) GrantLearnerRole(ctx context.Context, userID uuid.UUID) error {
	return nil
}

// PostgresCourses implements the LMS capability over the courses and
// enrollments tables, with the user's enrolled-course-id list kept in meta.
type PostgresCourses struct {
	db    *sql.DB
	users UserStore
}

func NewPostgresCourses(db *sql.DB, users UserStore) *PostgresCourses {
	return &PostgresCourses{db: db, users: users}
}

func (c *PostgresCourses) CourseMapping(ctx context.Context) (map[string]uuid.UUID, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, slug, external_id FROM courses WHERE published = TRUE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mapping := make(map[string]uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var slug string
		var externalID sql.NullString
		if err := rows.Scan(&id, &slug, &externalID); err != nil {
			return nil, err
		}
		if externalID.String != "" {
			mapping[externalID.String] = id
		}
		mapping[slug] = id
	}
	return mapping, rows.Err()
}

func (c *PostgresCourses) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2
	`, userID, courseID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *PostgresCourses) Enroll(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	enrolled, err := c.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	if enrolled {
		return false, nil
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, source) VALUES ($1, $2, 'bsa_import')
	`, userID, courseID)
	if err != nil {
		// A concurrent or repeated insert hitting the unique constraint is
		// the already-enrolled case, not a failure.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return false, nil
		}
		return false, err
	}

	if err := c.appendEnrolledCourse(ctx, userID, courseID); err != nil {
		return true, err
	}
	return true, nil
}

// appendEnrolledCourse adds the course id to the user's enrolled-course list
// meta, guarding against duplicate list entries even if the enrollment-record
// check were ever bypassed.
func (c *PostgresCourses) appendEnrolledCourse(ctx context.Context, userID, courseID uuid.UUID) error {
	raw, err := c.users.GetMeta(ctx, userID, MetaEnrolledCourses)
	if err != nil {
		return err
	}

	var ids []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			ids = nil
		}
	}
	for _, id := range ids {
		if id == courseID.String() {
			return nil
		}
	}
	ids = append(ids, courseID.String())

	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return c.users.SetMeta(ctx, userID, MetaEnrolledCourses, string(encoded))
}

func (c *PostgresCourses) GrantLearnerRole(ctx context.Context, userID uuid.UUID) error {
	return c.users.SetMeta(ctx, userID, MetaLearnerRole, models.RoleStudent)
}
