package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryKeystoreRoundTrip(t *testing.T) {
	ks := NewInMemoryKeystore()

	ref, err := ks.Store("bench", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "benchadapter.bench", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrPassphraseNotFound)
}

func TestResolvePassphrasePrefersExplicit(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("bench", "from-keyring")

	got, err := ResolvePassphrase("explicit", ref, ks)
	require.NoError(t, err)
	assert.Equal(t, "explicit", got)
}

func TestResolvePassphraseFromKeystore(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("bench", "from-keyring")

	got, err := ResolvePassphrase("", ref, ks)
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", got)
}

func TestResolvePassphraseMissingRef(t *testing.T) {
	_, err := ResolvePassphrase("", Ref("ghost"), NewInMemoryKeystore())
	assert.ErrorIs(t, err, ErrPassphraseNotFound)
}

func TestResolvePassphraseEmpty(t *testing.T) {
	got, err := ResolvePassphrase("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestResolvePassphraseNilKeystore(t *testing.T) {
	_, err := ResolvePassphrase("", Ref("x"), nil)
	assert.Error(t, err)
}
