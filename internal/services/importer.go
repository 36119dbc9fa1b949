package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
	"github.com/barbaarintasan/bsa-bridge/pkg/utils"
)

// ImportResults is the human-facing summary of one import run.
type ImportResults struct {
	Total              int      `json:"total"`
	Imported           int      `json:"imported"`
	Skipped            int      `json:"skipped"`
	Errors             int      `json:"errors"`
	EnrollmentsCreated int      `json:"enrollments_created"`
	ErrorDetails       []string `json:"error_details,omitempty"`
}

// Importer performs idempotent bulk import of app users. Records are
// processed strictly sequentially; each record commits independently, so a
// partial run leaves a consistent prefix and re-running the same file is safe.
type Importer struct {
	users   UserStore
	courses Courses
}

func NewImporter(users UserStore, courses Courses) *Importer {
	return &Importer{users: users, courses: courses}
}

// Run processes an app export file. A bad record never aborts the run: it is
// counted, described, and skipped.
func (im *Importer) Run(ctx context.Context, file *models.ImportFile) ImportResults {
	results := ImportResults{Total: len(file.Users)}

	mapping, err := im.courses.CourseMapping(ctx)
	if err != nil {
		log.Printf("[BSA Import] course mapping unavailable, enrollments will be skipped: %v", err)
		mapping = nil
	}

	for _, rec := range file.Users {
		email := utils.NormalizeEmail(rec.Email)
		if email == "" {
			results.Errors++
			results.ErrorDetails = append(results.ErrorDetails,
				fmt.Sprintf("User '%s' has no valid email - skipped", rec.Name))
			continue
		}

		existing, err := im.users.GetByEmail(ctx, email)
		if err != nil {
			results.Errors++
			results.ErrorDetails = append(results.ErrorDetails,
				fmt.Sprintf("Lookup failed for '%s': %v", email, err))
			continue
		}

		var userID uuid.UUID
		if existing != nil {
			// Already migrated: refresh non-identity metadata only so the
			// run stays idempotent.
			userID = existing.ID
			im.setMeta(ctx, userID, MetaAppID, rec.ID)
			if rec.Phone != "" {
				im.setMeta(ctx, userID, MetaPhone, rec.Phone)
			}
			results.Skipped++
		} else {
			user, err := im.createUser(ctx, email, rec)
			if err != nil {
				results.Errors++
				results.ErrorDetails = append(results.ErrorDetails,
					fmt.Sprintf("Failed to create user '%s': %v", email, err))
				// No enrollments may be attributed to a record whose user
				// was never created.
				continue
			}
			userID = user.ID
			results.Imported++
		}

		// Enrollment pass runs for both newly created and pre-existing users.
		if len(rec.Enrollments) > 0 && len(mapping) > 0 {
			for _, enr := range rec.Enrollments {
				courseID, ok := mapping[enr.CourseID]
				if !ok {
					continue
				}
				created, err := im.courses.Enroll(ctx, userID, courseID)
				if err != nil {
					log.Printf("[BSA Import] enrollment failed for %s in course %s: %v", email, courseID, err)
					continue
				}
				if created {
					results.EnrollmentsCreated++
				}
			}
		}
	}

	return results
}

func (im *Importer) createUser(ctx context.Context, email string, rec models.AppUserRecord) (*models.User, error) {
	login := utils.SanitizeUsername(email)
	if login == "" {
		return nil, fmt.Errorf("could not derive a username from %q", email)
	}

	// The plaintext is never known; the account gets a strong random
	// placeholder and the legacy hash rides along as a marker.
	tempPassword, err := utils.GenerateRandomPassword(32)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	first, last := models.SplitName(rec.Name)
	user := &models.User{
		Login:        login,
		Email:        email,
		DisplayName:  rec.Name,
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleSubscriber,
		PasswordHash: hash,
	}
	if err := im.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if rec.PasswordHash != "" {
		if err := im.users.SetMeta(ctx, user.ID, MetaLegacyBcrypt, rec.PasswordHash); err != nil {
			return nil, fmt.Errorf("user created but legacy hash not stored: %w", err)
		}
	}

	if err := im.users.SetMeta(ctx, user.ID, MetaAppID, rec.ID); err != nil {
		log.Printf("[BSA Import] failed to store app id for %s: %v", email, err)
	}
	if rec.Phone != "" {
		if err := im.users.SetMeta(ctx, user.ID, MetaPhone, rec.Phone); err != nil {
			log.Printf("[BSA Import] failed to store phone for %s: %v", email, err)
		}
	}
	if rec.Country != "" {
		if err := im.users.SetMeta(ctx, user.ID, MetaCountry, rec.Country); err != nil {
			log.Printf("[BSA Import] failed to store country for %s: %v", email, err)
		}
	}
	if rec.City != "" {
		if err := im.users.SetMeta(ctx, user.ID, MetaCity, rec.City); err != nil {
			log.Printf("[BSA Import] failed to store city for %s: %v", email, err)
		}
	}

	if err := im.courses.GrantLearnerRole(ctx, user.ID); err != nil {
		log.Printf("[BSA Import] failed to grant learner role to %s: %v", email, err)
	}

	return user, nil
}

func (im *Importer) setMeta(ctx context.Context, id uuid.UUID, key, value string) {
	if err := im.users.SetMeta(ctx, id, key, value); err != nil {
		log.Printf("[BSA Import] failed to update meta %s: %v", key, err)
	}
}
