package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

func TestAllocateCreatesUniqueWavFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tmp")
	manager := NewTempFileManager(dir, utils.DiscardLogger())

	first, err := manager.Allocate()
	require.NoError(t, err)
	second, err := manager.Allocate()
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	for _, f := range []*TempFile{first, second} {
		assert.Equal(t, dir, filepath.Dir(f.Path))
		assert.True(t, strings.HasSuffix(f.Path, ".wav"))
		assert.True(t, utils.CheckFileExists(f.Path))
	}

	first.Release()
	second.Release()
	assert.False(t, utils.CheckFileExists(first.Path))
	assert.False(t, utils.CheckFileExists(second.Path))
}

func TestReleaseIsIdempotent(t *testing.T) {
	manager := NewTempFileManager(t.TempDir(), utils.DiscardLogger())
	f, err := manager.Allocate()
	require.NoError(t, err)

	// 外部已经删除文件时 Release 也不报错
	require.NoError(t, os.Remove(f.Path))
	f.Release()
	f.Release()

	var nilFile *TempFile
	nilFile.Release()
}

func TestNewTempFileManagerDefaultsToOSTempDir(t *testing.T) {
	manager := NewTempFileManager("", nil)
	assert.Equal(t, os.TempDir(), manager.Dir)
}
