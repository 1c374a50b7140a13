package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-p/asr-media-cli/subgen/pkg/models"
	"github.com/ccp-p/asr-media-cli/subgen/pkg/utils"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRequiresModelLanguageAndFiles(t *testing.T) {
	_, err := runCLI(t, "tiny", "en")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUsage))

	_, err = runCLI(t)
	assert.True(t, errors.Is(err, utils.ErrUsage))
}

func TestRootRejectsInvalidLanguage(t *testing.T) {
	_, err := runCLI(t, "tiny", "not a language", "a.mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrUsage))
}

func TestWatchRequiresThreeArgs(t *testing.T) {
	_, err := runCLI(t, "watch", "tiny", "en")
	assert.True(t, errors.Is(err, utils.ErrUsage))
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "subgen.toml")

	out, err := runCLI(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.True(t, utils.CheckFileExists(path))

	_, err = runCLI(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "已存在")

	_, err = runCLI(t, "config", "init", "--overwrite", path)
	require.NoError(t, err)

	out, err = runCLI(t, "config", "show", "--config", path, "--workers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "max_workers = 3")
	assert.Contains(t, out, "device = ")
}

func TestConfigShowRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_workers: 0\n"), 0644))

	_, err := runCLI(t, "config", "show", "-c", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfig))
}

func TestRootGeneratesSubtitlesWithStubEngine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("需要 /bin/sh")
	}
	dir := t.TempDir()

	ffmpeg := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor arg; do out=\"$arg\"; done\nprintf 'RIFF' > \"$out\"\n"
	require.NoError(t, os.WriteFile(ffmpeg, []byte(script), 0755))

	config := models.NewDefaultConfig()
	config.FFmpegPath = ffmpeg
	config.UseStubEngine = true
	config.TempDir = filepath.Join(dir, "tmp")
	configPath := filepath.Join(dir, "subgen.toml")
	require.NoError(t, config.SaveToFile(configPath))

	media := filepath.Join(dir, "talk.wav")
	require.NoError(t, os.WriteFile(media, []byte("audio"), 0644))

	out, err := runCLI(t, "--config", configPath, "--no-progress", "base", "auto", media)
	require.NoError(t, err)
	assert.Contains(t, out, "已导出SRT字幕")

	data, err := os.ReadFile(filepath.Join(dir, "talk.srt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:00,000 --> 00:00:01,000\n[stub] base\n", string(data))
}
