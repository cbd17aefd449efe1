package access

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// Mode controls whether admin writes are allowed.
type Mode int

const (
	ModeReadWrite Mode = iota
	ModeReadOnly
)

func (m Mode) String() string {
	switch m {
	case ModeReadWrite:
		return "read_write"
	case ModeReadOnly:
		return "read_only"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allowed Decision = iota
	Unauthenticated
	Forbidden
)

// Manager validates admin bearer tokens.
type Manager struct {
	mu     sync.RWMutex
	hashes [][sha256.Size]byte
	mode   Mode
}

// NewManager creates a manager for the given tokens. Blank tokens are
// ignored; with no tokens every admin request is rejected.
func NewManager(tokens []string, readOnly bool) *Manager {
	m := &Manager{mode: ModeReadWrite}
	if readOnly {
		m.mode = ModeReadOnly
	}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			m.hashes = append(m.hashes, sha256.Sum256([]byte(t)))
		}
	}
	return m
}

// Authenticate reports whether the token belongs to an admin.
func (m *Manager) Authenticate(token string) bool {
	if token == "" {
		return false
	}
	sum := sha256.Sum256([]byte(token))

	m.mu.RLock()
	defer m.mu.RUnlock()

	match := 0
	for _, h := range m.hashes {
		match |= subtle.ConstantTimeCompare(sum[:], h[:])
	}
	return match == 1
}

// Authorize checks a token for a read or write admin action.
func (m *Manager) Authorize(token string, write bool) (Decision, string) {
	if !m.Enabled() {
		return Unauthenticated, "admin access is not configured"
	}
	if !m.Authenticate(token) {
		return Unauthenticated, "invalid or missing admin token"
	}
	if write && m.Mode() == ModeReadOnly {
		return Forbidden, fmt.Sprintf("admin writes are disabled (%s mode)", ModeReadOnly)
	}
	return Allowed, "allowed"
}

// Enabled reports whether any admin token is configured.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hashes) > 0
}

// Mode returns the current mode.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// SetMode updates the mode.
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode != ModeReadOnly {
		mode = ModeReadWrite
	}
	m.mode = mode
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Fingerprint identifies a token in logs without revealing it.
func Fingerprint(token string) string {
	if token == "" {
		return "anonymous"
	}
	sum := sha256.Sum256([]byte(token))
	return "admin-" + hex.EncodeToString(sum[:4])
}
