package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	mgr := NewManager([]string{"s3cret", " ", "other"}, false)

	tests := []struct {
		name  string
		token string
		write bool
		want  Decision
	}{
		{"valid read", "s3cret", false, Allowed},
		{"valid write", "other", true, Allowed},
		{"empty token", "", false, Unauthenticated},
		{"wrong token", "s3cre", true, Unauthenticated},
		{"blank configured token is ignored", " ", false, Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := mgr.Authorize(tt.token, tt.write)
			if got != tt.want {
				t.Errorf("Authorize = %v (%s), want %v", got, reason, tt.want)
			}
		})
	}
}

func TestReadOnlyMode(t *testing.T) {
	mgr := NewManager([]string{"tok"}, true)
	assert.Equal(t, ModeReadOnly, mgr.Mode())

	got, _ := mgr.Authorize("tok", false)
	assert.Equal(t, Allowed, got)

	got, reason := mgr.Authorize("tok", true)
	assert.Equal(t, Forbidden, got)
	assert.Contains(t, reason, "read_only")

	mgr.SetMode(ModeReadWrite)
	got, _ = mgr.Authorize("tok", true)
	assert.Equal(t, Allowed, got)

	mgr.SetMode(Mode(42))
	assert.Equal(t, ModeReadWrite, mgr.Mode())
}

func TestNoTokensConfigured(t *testing.T) {
	mgr := NewManager(nil, false)
	assert.False(t, mgr.Enabled())

	got, _ := mgr.Authorize("", false)
	assert.Equal(t, Unauthenticated, got)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))
	assert.Empty(t, BearerToken(""))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "read_write", ModeReadWrite.String())
	assert.Equal(t, "read_only", ModeReadOnly.String())
	assert.Equal(t, "unknown", Mode(9).String())
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("s3cret")
	assert.Len(t, fp, len("admin-")+8)
	assert.NotContains(t, fp, "s3cret")
	assert.Equal(t, fp, Fingerprint("s3cret"))
	assert.Equal(t, "anonymous", Fingerprint(""))
}
