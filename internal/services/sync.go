package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

// syncSource identifies this platform in outbound payloads. The app expects
// the literal "wordpress" for requests coming from the web side.
const syncSource = "wordpress"

type outboundPayload struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// AppSync delivers local registration events to the app backend. Delivery is
// best-effort: the triggering registration succeeds regardless of outcome,
// and failures are only flagged on the user record, never retried.
type AppSync struct {
	users   UserStore
	audit   *Audit
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewAppSync(users UserStore, audit *Audit, apiKey, baseURL string, timeout time.Duration) *AppSync {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AppSync{
		users:   users,
		audit:   audit,
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NotifyApp pushes a newly registered user to the app backend. Users created
// by inbound sync carry the synced-from-app marker and are never echoed back.
func (s *AppSync) NotifyApp(ctx context.Context, user *models.User) {
	fromApp, err := s.users.GetMeta(ctx, user.ID, MetaSyncedFromApp)
	if err != nil {
		log.Printf("[BSA Sync] marker lookup failed for %s: %v", user.Email, err)
		return
	}
	if fromApp != "" {
		// Loop prevention: this account originated in the app.
		return
	}

	if s.apiKey == "" {
		log.Printf("[BSA Sync] API key not configured - skipping sync to app for user: %s", user.Email)
		return
	}

	phone, err := s.users.GetMeta(ctx, user.ID, MetaPhoneNumber)
	if err != nil {
		log.Printf("[BSA Sync] phone lookup failed for %s: %v", user.Email, err)
	}

	payload := outboundPayload{
		Email:  user.Email,
		Name:   user.Name(),
		Phone:  phone,
		Source: syncSource,
	}

	if err := s.deliver(ctx, payload); err != nil {
		log.Printf("[BSA Sync] Failed to sync user to app: %v", err)
		s.markFailed(ctx, user, err)
		s.audit.RecordSyncEvent(SyncEvent{
			Direction: SyncOutbound, Email: user.Email, Action: "failed", Detail: err.Error(),
		})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.users.SetMeta(ctx, user.ID, MetaSyncedToApp, "1"); err != nil {
		log.Printf("[BSA Sync] failed to set synced-to-app marker for %s: %v", user.Email, err)
	}
	if err := s.users.SetMeta(ctx, user.ID, MetaSyncToAppDate, now); err != nil {
		log.Printf("[BSA Sync] failed to set sync date for %s: %v", user.Email, err)
	}
	log.Printf("[BSA Sync] User synced to app: %s", user.Email)
	s.audit.RecordSyncEvent(SyncEvent{
		Direction: SyncOutbound, Email: user.Email, Action: "synced",
	})
}

func (s *AppSync) deliver(ctx context.Context, payload outboundPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/wordpress/sync-user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("app returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

func (s *AppSync) markFailed(ctx context.Context, user *models.User, cause error) {
	if err := s.users.SetMeta(ctx, user.ID, MetaSyncToAppFail, "1"); err != nil {
		log.Printf("[BSA Sync] failed to set sync-failed marker for %s: %v", user.Email, err)
	}
	if err := s.users.SetMeta(ctx, user.ID, MetaSyncToAppError, cause.Error()); err != nil {
		log.Printf("[BSA Sync] failed to record sync error for %s: %v", user.Email, err)
	}
}
