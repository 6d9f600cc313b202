package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType names a change recorded in the audit trail.
type AuditEventType string

const (
	// Collection changes confirmed by the service
	AuditBookCreate AuditEventType = "book_create"
	AuditBookUpdate AuditEventType = "book_update"
	AuditBookDelete AuditEventType = "book_delete"

	// Collection reloads
	AuditRefresh AuditEventType = "refresh"

	// Session events
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"
)

// AuditEvent is one JSON line of the audit trail.
type AuditEvent struct {
	Timestamp  int64          `json:"ts"`      // Unix milliseconds
	EventType  AuditEventType `json:"event"`   // What happened
	Category   string         `json:"cat"`     // Log category
	SessionID  string         `json:"session"` // Session correlation
	BookID     int64          `json:"book,omitempty"`
	Title      string         `json:"title,omitempty"`
	Success    bool           `json:"success"`
	DurationMs int64          `json:"dur_ms"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"msg"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger = &AuditLogger{}
)

// AuditLogger writes audit events. The zero value is usable.
type AuditLogger struct {
	sessionID string
	category  Category
}

// InitAudit opens <logs>/<date>_audit.log. It is a no-op unless debug mode
// is on.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	mu.RLock()
	dir := logsDir
	mu.RUnlock()
	if dir == "" {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	f, err := os.OpenFile(filepath.Join(dir, fmt.Sprintf("%s_audit.log", date)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = f
	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		_ = auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string, category Category) *AuditLogger {
	return &AuditLogger{sessionID: sessionID, category: category}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}

	data, err := json.Marshal(event)
	if err == nil {
		_, _ = auditFile.Write(append(data, '\n'))
	}
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// BookChange records the result of a create, update or delete.
func (a *AuditLogger) BookChange(event AuditEventType, id int64, title string, duration time.Duration, err error) {
	e := AuditEvent{
		EventType:  event,
		Category:   string(CategoryStore),
		BookID:     id,
		Title:      title,
		Success:    err == nil,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		e.Error = err.Error()
		e.Message = fmt.Sprintf("%s failed for book %d", event, id)
	} else {
		e.Message = fmt.Sprintf("%s book %d", event, id)
	}
	a.Log(e)
}

// Refresh records a reload of the collection.
func (a *AuditLogger) Refresh(count int, duration time.Duration, err error) {
	e := AuditEvent{
		EventType:  AuditRefresh,
		Category:   string(CategoryStore),
		Success:    err == nil,
		DurationMs: duration.Milliseconds(),
		Fields:     map[string]any{"books": count},
		Message:    fmt.Sprintf("loaded %d books", count),
	}
	if err != nil {
		e.Error = err.Error()
		e.Message = "refresh failed"
	}
	a.Log(e)
}

// SessionStart logs session start
func (a *AuditLogger) SessionStart() {
	a.Log(AuditEvent{
		EventType: AuditSessionStart,
		Success:   true,
		Message:   fmt.Sprintf("Session started: %s", a.sessionID),
	})
}

// SessionEnd logs session end
func (a *AuditLogger) SessionEnd(revisions uint64, duration time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditSessionEnd,
		Success:    true,
		DurationMs: duration.Milliseconds(),
		Fields:     map[string]any{"revisions": revisions},
		Message:    fmt.Sprintf("Session ended: %s (%d revisions)", a.sessionID, revisions),
	})
}
