package temp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDirHierarchy(t *testing.T) {
	root, err := TempDirDefault()
	require.NoError(t, err)
	defer root.Remove()
	assert.True(t, strings.HasPrefix(filepath.Base(root.Dir), TmpDirPrefix))

	fixed, err := root.FixedDir("results")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root.Dir, "results"), fixed.Dir)

	// FixedDir is idempotent.
	again, err := root.FixedDir("results")
	require.NoError(t, err)
	assert.Equal(t, fixed.Dir, again.Dir)

	scratch, err := fixed.TempDir("scratch-")
	require.NoError(t, err)
	assert.Equal(t, fixed.Dir, filepath.Dir(scratch.Dir))

	require.NoError(t, root.Remove())
	_, err = os.Stat(scratch.Dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, root.Remove())
}

func TestFixedDirRejectsPaths(t *testing.T) {
	root, err := TempDirDefault()
	require.NoError(t, err)
	defer root.Remove()

	_, err = root.FixedDir("a" + string(os.PathSeparator) + "b")
	assert.Error(t, err)
	_, err = root.FixedDir("")
	assert.Error(t, err)
}

func TestRemoveNil(t *testing.T) {
	var d *TempDir
	assert.NoError(t, d.Remove())
}
