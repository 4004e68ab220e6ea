package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	appErr "github.com/mindweave/engine/pkg/errors"
)

func TestDiskImageStore_SaveAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskImageStore(dir, "http://localhost:8080/assets/")
	require.NoError(t, err)

	userID := uuid.New()
	url, err := store.SaveProfileImage(context.Background(), userID, "avatar.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/assets/profile/"+userID.String()+".png", url)

	data, err := os.ReadFile(filepath.Join(dir, "profile", userID.String()+".png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	// Re-upload replaces in place.
	_, err = store.SaveProfileImage(context.Background(), userID, "new.png", strings.NewReader("v2"))
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "profile", userID.String()+".png"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestDiskImageStore_RejectsUnsupportedType(t *testing.T) {
	store, err := NewDiskImageStore(t.TempDir(), "http://localhost:8080/assets")
	require.NoError(t, err)

	_, err = store.SaveProfileImage(context.Background(), uuid.New(), "payload.exe", strings.NewReader("x"))
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestDiskImageStore_RejectsOversizedImage(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskImageStore(dir, "http://localhost:8080/assets")
	require.NoError(t, err)

	userID := uuid.New()
	big := bytes.Repeat([]byte("a"), MaxImageSize+1)
	_, err = store.SaveProfileImage(context.Background(), userID, "huge.jpg", bytes.NewReader(big))
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	// Partial file must not linger.
	_, statErr := os.Stat(filepath.Join(dir, "profile", userID.String()+".jpg"))
	require.True(t, os.IsNotExist(statErr))
}
