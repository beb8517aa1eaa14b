package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlatformsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platforms.yaml")
	content := `platforms:
  - name: club
    command: mvn
    args: ["test", "-Dtest"]
    testGlob: "src/test/**/*.java"
  - name: web
    command: npx
    args: ["playwright", "test"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	platforms, err := LoadPlatforms(path)
	require.NoError(t, err)
	require.Len(t, platforms, 2)
	assert.Equal(t, "mvn", platforms["club"].Command)
	assert.Equal(t, "src/test/**/*.java", platforms["club"].TestGlob)
}

func TestLoadPlatformsMissingFile(t *testing.T) {
	platforms, err := LoadPlatforms(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, platforms)
}

func TestRunUnregisteredPlatform(t *testing.T) {
	r := NewRunner()
	_, err := r.Run(context.Background(), "club", "book.spec")
	assert.ErrorContains(t, err, "not registered")
}

func TestRunReportsExitCode(t *testing.T) {
	r := NewRunner()
	r.Register("club", PlatformConfig{Command: "sh", Args: []string{"-c", "exit 3"}})

	res, err := r.Run(context.Background(), "club", "book.spec")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Code)
	assert.False(t, res.Success())
}

func TestRunCapturesOutput(t *testing.T) {
	r := NewRunner()
	r.Register("club", PlatformConfig{Command: "sh", Args: []string{"-c", "echo running $0"}})

	res, err := r.Run(context.Background(), "club", "book.spec")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Contains(t, res.Output, "running book.spec")
}

func TestRunNormalizesPlatformAlias(t *testing.T) {
	r := NewRunner()
	r.Register("clubApp", PlatformConfig{Command: "true"})

	res, err := r.Run(context.Background(), "club-app", "book.spec")
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestLocateTestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests", "booking"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "booking", "book.spec.ts"), []byte(""), 0644))

	r := NewRunner(WithBaseDir(dir))
	r.Register("web", PlatformConfig{
		Command:  "sh",
		Args:     []string{"-c", "echo $0"},
		TestGlob: "tests/**/*.spec.ts",
	})

	res, err := r.Run(context.Background(), "web", "book")
	require.NoError(t, err)
	assert.Contains(t, res.Output, filepath.Join("tests", "booking", "book.spec.ts"))
}

func TestLocateAmbiguousTestFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests", "a"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tests", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "a", "book.spec.ts"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "b", "book.spec.ts"), []byte(""), 0644))

	r := NewRunner(WithBaseDir(dir))
	r.Register("web", PlatformConfig{Command: "true", TestGlob: "tests/**/*.spec.ts"})

	_, err := r.Run(context.Background(), "web", "book")
	assert.ErrorContains(t, err, "ambiguous")
}
