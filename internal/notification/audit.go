package notification

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Audit events.
const (
	EventArticleCreated     = "article_created"
	EventArticleUpdated     = "article_updated"
	EventArticleDeleted     = "article_deleted"
	EventArticlePublished   = "article_published"
	EventArticleUnpublished = "article_unpublished"
	EventArticleDrafted     = "article_drafted"
	EventAccessDenied       = "access_denied"
)

// AuditEntry is a single audit log entry.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Actor     string    `json:"actor,omitempty"`
	ArticleID string    `json:"article_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Auditor writes an append-only audit trail.
type Auditor struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewAuditor creates a new auditor. An empty path yields an auditor that
// records nothing.
func NewAuditor(filePath string) (*Auditor, error) {
	if filePath == "" {
		return &Auditor{now: time.Now}, nil
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}

	return &Auditor{file: f, now: time.Now}, nil
}

// Close closes the audit file.
func (a *Auditor) Close() {
	if a.file != nil {
		a.file.Close()
	}
}

// LogArticle records an admin action on an article.
func (a *Auditor) LogArticle(event, actor, articleID, title string) error {
	return a.log(AuditEntry{
		Event:     event,
		Actor:     actor,
		ArticleID: articleID,
		Title:     title,
	})
}

// LogDraft records a generated article draft.
func (a *Auditor) LogDraft(actor, topic, title string) error {
	return a.log(AuditEntry{
		Event:   EventArticleDrafted,
		Actor:   actor,
		Title:   title,
		Details: "topic=" + topic,
	})
}

// LogEvent records a general event.
func (a *Auditor) LogEvent(event, details string) error {
	return a.log(AuditEntry{Event: event, Details: details})
}

func (a *Auditor) log(entry AuditEntry) error {
	if a.file == nil {
		return nil
	}
	entry.Timestamp = a.now()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}
