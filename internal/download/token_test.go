package download

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issueTime = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func TestSigner_SignAndValidate(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime)
	require.NotEmpty(t, token)

	assert.NoError(t, s.Validate(token, "/srv/results/report.txt", "alice", issueTime.Add(30*time.Minute)))
}

func TestSigner_WrongIdentityRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime)
	assert.ErrorIs(t, s.Validate(token, "/srv/results/report.txt", "bob", issueTime), ErrTokenInvalid)
}

func TestSigner_WrongPathRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime)
	assert.ErrorIs(t, s.Validate(token, "/srv/results/other.txt", "alice", issueTime), ErrTokenInvalid)
}

func TestSigner_ExpiredTokenRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime)
	assert.ErrorIs(t, s.Validate(token, "/srv/results/report.txt", "alice", issueTime.Add(2*time.Hour)), ErrTokenExpired)
}

func TestSigner_FutureTokenRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime.Add(time.Hour))
	assert.ErrorIs(t, s.Validate(token, "/srv/results/report.txt", "alice", issueTime), ErrTokenInvalid)
}

func TestSigner_DifferentSecretRejected(t *testing.T) {
	token := NewSigner([]byte("secret one"), time.Hour).Sign("/srv/results/report.txt", "alice", issueTime)

	other := NewSigner([]byte("secret two"), time.Hour)
	assert.ErrorIs(t, other.Validate(token, "/srv/results/report.txt", "alice", issueTime), ErrTokenInvalid)
}

func TestSigner_GarbageTokensRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	for _, token := range []string{"", "nodot", "not!base64.alsonot!", "YWJj.###"} {
		assert.ErrorIs(t, s.Validate(token, "/srv/results/report.txt", "alice", issueTime), ErrTokenInvalid, "token %q", token)
	}
}

func TestSigner_TamperedTokenRejected(t *testing.T) {
	s := NewSigner([]byte("server secret"), time.Hour)

	token := s.Sign("/srv/results/report.txt", "alice", issueTime)
	tampered := token[:len(token)-2] + "AA"
	if tampered == token {
		tampered = token[:len(token)-2] + "BB"
	}

	assert.ErrorIs(t, s.Validate(tampered, "/srv/results/report.txt", "alice", issueTime), ErrTokenInvalid)
}
