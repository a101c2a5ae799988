package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

const entrypoint = "/exam_archive/api/users/"

func superLoginDoc() *collection.Document {
	return &collection.Document{
		Href: entrypoint + "bigboss/",
		Items: []collection.Item{{
			Href: entrypoint + "bigboss/",
			Data: []collection.Field{
				{Name: "name", Value: "bigboss"},
				{Name: "userType", Value: "super"},
			},
		}},
		Links: []collection.Link{
			{Name: "archive_list", Href: "/exam_archive/api/archives/"},
		},
	}
}

func basicLoginDoc() *collection.Document {
	return &collection.Document{
		Href: entrypoint + "antti/",
		Items: []collection.Item{{
			Href: entrypoint + "antti/",
			Data: []collection.Field{
				{Name: "name", Value: "antti"},
				{Name: "userType", Value: "basic"},
			},
			Links: []collection.Link{
				{Name: "Information Processing Science", Href: "/exam_archive/api/archives/1/"},
			},
		}},
	}
}

func fetcherReturning(doc *collection.Document) LoginFetcher {
	return func(_ context.Context, _, _, _ string) (*collection.Document, error) {
		return doc, nil
	}
}

func TestHashPassword(t *testing.T) {
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	assert.Equal(t, want, HashPassword("abc"))
	assert.NotEqual(t, HashPassword("abc"), HashPassword("abd"))
}

func TestLogin_SuperDerivesArchiveListEntrypoint(t *testing.T) {
	store := NewStore(NewMemoryStore())

	var probedURL, probedUser, probedHash string
	fetch := func(_ context.Context, url, username, hash string) (*collection.Document, error) {
		probedURL, probedUser, probedHash = url, username, hash
		return superLoginDoc(), nil
	}

	sess, err := store.Login(context.Background(), fetch, entrypoint, "bigboss", "hunter2", false)
	require.NoError(t, err)

	assert.Equal(t, entrypoint+"bigboss/", probedURL)
	assert.Equal(t, "bigboss", probedUser)
	assert.Equal(t, HashPassword("hunter2"), probedHash)

	assert.True(t, sess.Super())
	assert.Equal(t, "/exam_archive/api/archives/", sess.EntrypointURL)
	assert.Equal(t, "Archives", sess.EntrypointName)

	username, hash, ok := store.Credentials()
	require.True(t, ok)
	assert.Equal(t, "bigboss", username)
	assert.Equal(t, sess.PasswordHash, hash)
}

func TestLogin_BasicUsesAccessibleArchive(t *testing.T) {
	store := NewStore(NewMemoryStore())

	sess, err := store.Login(context.Background(), fetcherReturning(basicLoginDoc()), entrypoint, "antti", "pw", false)
	require.NoError(t, err)

	assert.False(t, sess.Super())
	assert.Equal(t, "/exam_archive/api/archives/1/", sess.EntrypointURL)
	assert.Equal(t, "Information Processing Science", sess.EntrypointName)
}

func TestLogin_RememberFalseLeavesDurableUntouched(t *testing.T) {
	durable := NewMemoryStore()
	require.NoError(t, durable.Save(Session{Username: "stale"}))

	store := NewStore(durable)
	_, err := store.Login(context.Background(), fetcherReturning(superLoginDoc()), entrypoint, "bigboss", "pw", false)
	require.NoError(t, err)

	restored, err := durable.Load()
	require.NoError(t, err)
	assert.Nil(t, restored, "remember=false must clear, not mirror")
}

func TestLogin_RememberSurvivesRestart(t *testing.T) {
	durable := NewMemoryStore()

	store := NewStore(durable)
	sess, err := store.Login(context.Background(), fetcherReturning(superLoginDoc()), entrypoint, "bigboss", "pw", true)
	require.NoError(t, err)

	// Simulate a process restart against the same durable storage.
	fresh := NewStore(durable)
	require.True(t, fresh.Rehydrate())

	restored, ok := fresh.Current()
	require.True(t, ok)
	assert.Equal(t, sess, restored)
}

func TestLogin_FailureClearsBothStores(t *testing.T) {
	durable := NewMemoryStore()
	require.NoError(t, durable.Save(Session{Username: "remembered"}))

	store := NewStore(durable)
	fetch := func(context.Context, string, string, string) (*collection.Document, error) {
		return nil, errors.New("401")
	}

	_, err := store.Login(context.Background(), fetch, entrypoint, "bigboss", "pw", true)
	require.Error(t, err)

	_, ok := store.Current()
	assert.False(t, ok)
	restored, err := durable.Load()
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestUpdatePassword(t *testing.T) {
	durable := NewMemoryStore()
	store := NewStore(durable)
	_, err := store.Login(context.Background(), fetcherReturning(superLoginDoc()), entrypoint, "bigboss", "old", true)
	require.NoError(t, err)

	newHash := HashPassword("new")

	store.UpdatePassword("somebody-else", newHash)
	_, hash, _ := store.Credentials()
	assert.NotEqual(t, newHash, hash, "other identities must not touch the active session")

	store.UpdatePassword("bigboss", newHash)
	_, hash, _ = store.Credentials()
	assert.Equal(t, newHash, hash)

	restored, err := durable.Load()
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, newHash, restored.PasswordHash, "durable mirror must follow the refresh")
}

func TestClear(t *testing.T) {
	store := NewStore(NewMemoryStore())
	_, err := store.Login(context.Background(), fetcherReturning(superLoginDoc()), entrypoint, "bigboss", "pw", true)
	require.NoError(t, err)

	store.Clear()

	_, ok := store.Current()
	assert.False(t, ok)
	assert.False(t, store.Rehydrate())
}
