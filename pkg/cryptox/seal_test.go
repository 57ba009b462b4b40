package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	plaintext := []byte(`{"access_token":"aaa","refresh_token":"bbb"}`)

	blob, err := Seal(plaintext, "correct horse battery staple")
	require.NoError(t, err)
	require.NotContains(t, string(blob), "aaa", "sealed blob must not leak plaintext")

	out, err := Open(blob, "correct horse battery staple")
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestSealIsNonDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Seal([]byte("tokens"), "pw")
	require.NoError(t, err)
	b, err := Seal([]byte("tokens"), "pw")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "fresh salt and nonce per seal")
}

func TestOpenWrongPassphrase(t *testing.T) {
	t.Parallel()

	blob, err := Seal([]byte("tokens"), "right")
	require.NoError(t, err)

	_, err = Open(blob, "wrong")
	require.ErrorIs(t, err, ErrSealedData)
}

func TestOpenTruncatedBlob(t *testing.T) {
	t.Parallel()

	_, err := Open([]byte("too short"), "pw")
	require.ErrorIs(t, err, ErrSealedData)
}

func TestOpenTamperedBlob(t *testing.T) {
	t.Parallel()

	blob, err := Seal([]byte("tokens"), "pw")
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xff

	_, err = Open(blob, "pw")
	require.ErrorIs(t, err, ErrSealedData)
}
