package linktoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("link-1", "program-ipa")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	linkID, audience, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "link-1", linkID)
	assert.Equal(t, "program-ipa", audience)
	assert.Equal(t, expiresAt.Unix(), parsedExpiry.Unix())
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Generate("link-1", "program-ipa")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	assert.Error(t, err)

	other := NewSigner("different", time.Hour)
	_, _, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSignerRejectsExpired(t *testing.T) {
	signer := &Signer{secret: []byte("secret"), ttl: -time.Minute}
	token, _, err := signer.Generate("link-1", "")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	assert.Error(t, err)
}
