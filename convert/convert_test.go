package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tt "github.com/modernlint/loopconv/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		config, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".loopconv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"max-copy-size: 32\nmin-confidence: safe\nverbose: true\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(32), config.MaxCopySize)
	assert.Equal(t, "safe", config.MinConfidence)
	assert.True(t, config.Verbose)
	// Unset fields keep their defaults.
	assert.Equal(t, "camelBack", config.NamingStyle)
}

func TestConfigPolicy(t *testing.T) {
	t.Parallel()

	policy, err := DefaultConfig().Policy()
	require.NoError(t, err)
	assert.Equal(t, int64(16), policy.MaxCopySize)
	assert.Equal(t, tt.ConfidenceReasonable, policy.MinConfidence)

	bad := DefaultConfig()
	bad.MinConfidence = "certain"
	_, err = bad.Policy()
	require.Error(t, err)

	bad = DefaultConfig()
	bad.NamingStyle = "snake"
	_, err = bad.Policy()
	require.Error(t, err)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	const convertible = `package main

func main() {
	nums := []int{1, 2, 3}
	for i := 0; i < len(nums); i++ {
		println(nums[i])
	}
}
`
	const clean = `package main

func main() {
	nums := []int{1, 2, 3}
	for _, n := range nums {
		println(n)
	}
}
`

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte(convertible), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte(clean), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not go"), 0o644))

	engine, err := New("")
	require.NoError(t, err)

	logger := zap.NewNop()

	t.Run("directory walk", func(t *testing.T) {
		issues, err := ProcessPath(context.Background(), logger, engine, dir)
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, filepath.Join(dir, "a.go"), issues[0].Filename)
	})

	t.Run("single file", func(t *testing.T) {
		issues, err := ProcessFiles(context.Background(), logger, engine, []string{filepath.Join(dir, "a.go")})
		require.NoError(t, err)
		assert.Len(t, issues, 1)
	})

	t.Run("non-go file yields nothing", func(t *testing.T) {
		issues, err := ProcessPath(context.Background(), logger, engine, filepath.Join(dir, "notes.txt"))
		require.NoError(t, err)
		assert.Empty(t, issues)
	})
}

func TestProcessSources(t *testing.T) {
	t.Parallel()

	engine, err := New("")
	require.NoError(t, err)

	sources := [][]byte{
		[]byte("package main\n\nfunc main() {\n\txs := []int{1}\n\tfor i := 0; i < len(xs); i++ {\n\t\tprintln(xs[i])\n\t}\n}\n"),
		[]byte("package main\n\nfunc main() {}\n"),
	}

	issues, err := ProcessSources(context.Background(), zap.NewNop(), engine, sources)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}
