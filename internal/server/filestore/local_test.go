package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/userservice/internal/common"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)
	return l
}

func TestLocal_SaveOpenExistsDelete(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)
	name := "images/user_profile/abc.png"

	ok, err := l.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Save(ctx, name, strings.NewReader("payload")))

	ok, err = l.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = os.Stat(filepath.Join(l.Root(), "images", "user_profile", "abc.png"))
	require.NoError(t, err)

	rc, err := l.Open(ctx, name)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(b))

	require.NoError(t, l.Delete(ctx, name))
	ok, err = l.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	require.NoError(t, l.Delete(ctx, name))
}

func TestLocal_OpenMissing(t *testing.T) {
	l := newLocal(t)
	_, err := l.Open(context.Background(), "images/nope.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestLocal_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)

	err := l.Save(ctx, "../outside.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorage))

	_, err = l.Exists(ctx, "/etc/passwd")
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(l.Root()), "outside.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_URL(t *testing.T) {
	l := newLocal(t)
	assert.Equal(t, "/media/images/user_profile/a.jpg", l.URL("images/user_profile/a.jpg"))
}
