// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questboard/questboard/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces PHC-encoded digest", func(t *testing.T) {
		digest, err := hasher.Hash("correct-horse")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$argon2id$"))
	})

	t.Run("same password produces different digests", func(t *testing.T) {
		d1, err := hasher.Hash("correct-horse")
		require.NoError(t, err)
		d2, err := hasher.Hash("correct-horse")
		require.NoError(t, err)
		assert.NotEqual(t, d1, d2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("round trip verifies", func(t *testing.T) {
		digest, err := hasher.Hash("correct-horse")
		require.NoError(t, err)

		ok, err := hasher.Verify("correct-horse", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("both salted digests verify against the same password", func(t *testing.T) {
		d1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		d2, err := hasher.Hash("samepassword")
		require.NoError(t, err)

		for _, digest := range []string{d1, d2} {
			ok, err := hasher.Verify("samepassword", digest)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("wrong password is false not error", func(t *testing.T) {
		digest, err := hasher.Hash("correct-horse")
		require.NoError(t, err)

		ok, err := hasher.Verify("battery-staple", digest)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed digest is an error", func(t *testing.T) {
		_, err := hasher.Verify("correct-horse", "not-a-digest")
		assert.Error(t, err)
	})

	t.Run("unsupported algorithm is an error", func(t *testing.T) {
		_, err := hasher.Verify("pw", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported hash algorithm")
	})

	t.Run("bad parameter segment is an error", func(t *testing.T) {
		_, err := hasher.Verify("pw", "$argon2id$v=19$invalid$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("bad salt base64 is an error", func(t *testing.T) {
		_, err := hasher.Verify("pw", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("bad key base64 is an error", func(t *testing.T) {
		_, err := hasher.Verify("pw", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!")
		assert.Error(t, err)
	})

	t.Run("threads overflow is an error", func(t *testing.T) {
		_, err := hasher.Verify("pw", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})
}
