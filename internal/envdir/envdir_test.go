package envdir

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvDir(t *testing.T, vars map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, value := range vars {
		err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0o644)
		require.NoError(t, err)
	}

	return dir
}

func TestLoad(t *testing.T) {
	dir := writeEnvDir(t, map[string]string{
		"RUSTC_CHANNEL":   "stable\n",
		"RUSTC_REVISION":  "1.2.3",
		"DATABASE_URL":    "postgres://localhost/app\n\n",
		"PATH":            "/evil/bin",
		"LD_PRELOAD":      "/evil/lib.so",
		"LIBRARY_PATH":    "/evil/lib",
		"LD_LIBRARY_PATH": "/evil/lib",
		"GIT_DIR":         "/evil/.git",
		"CPATH":           "/evil/include",
		"CPPATH":          "/evil/include",
		"not-a-name":      "skipped",
	})

	err := os.Mkdir(filepath.Join(dir, "SUBDIR"), 0o755)
	require.NoError(t, err)

	env, err := Load(dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, Env{
		"RUSTC_CHANNEL":  "stable",
		"RUSTC_REVISION": "1.2.3",
		"DATABASE_URL":   "postgres://localhost/app",
	}, env)
}

func TestLoad_MissingDirectory(t *testing.T) {
	env, err := Load(filepath.Join(t.TempDir(), "missing"), Options{})
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestLoad_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env")
	require.NoError(t, os.WriteFile(path, []byte("RUSTC_CHANNEL=beta\n"), 0o644))

	env, err := Load(path, Options{})
	require.Error(t, err)
	assert.NotNil(t, env)
	assert.Empty(t, env)
}

func TestLoad_Whitelist(t *testing.T) {
	dir := writeEnvDir(t, map[string]string{
		"RUSTC_CHANNEL": "beta",
		"DATABASE_URL":  "postgres://localhost/app",
		"PATH":          "/evil/bin",
	})

	t.Run("whitelist restricts imports", func(t *testing.T) {
		env, err := Load(dir, Options{Whitelist: regexp.MustCompile(`^RUSTC_`)})
		require.NoError(t, err)
		assert.Equal(t, Env{"RUSTC_CHANNEL": "beta"}, env)
	})

	t.Run("blacklist wins over whitelist", func(t *testing.T) {
		env, err := Load(dir, Options{Whitelist: regexp.MustCompile(`.*`)})
		require.NoError(t, err)
		assert.NotContains(t, env, "PATH")
		assert.Contains(t, env, "DATABASE_URL")
	})
}

func TestImportable(t *testing.T) {
	tests := []struct {
		name      string
		whitelist *regexp.Regexp
		want      bool
	}{
		{"RUSTC_CHANNEL", nil, true},
		{"_PRIVATE", nil, true},
		{"PATH", nil, false},
		{"PATH", regexp.MustCompile(`^PATH$`), false},
		{"LD_PRELOAD", nil, false},
		{"LD_LIBRARY_PATH", nil, false},
		{"GIT_DIR", nil, false},
		{"CPATH", nil, false},
		{"CPPATH", nil, false},
		{"LIBRARY_PATH", nil, false},
		{"MYPATH", nil, true},
		{"PATH_EXTRA", nil, true},
		{"1ABC", nil, false},
		{"with space", nil, false},
		{"DATABASE_URL", regexp.MustCompile(`^RUSTC_`), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Importable(tt.name, tt.whitelist), "Importable(%q)", tt.name)
	}
}

func TestFromEnviron(t *testing.T) {
	env := FromEnviron([]string{"HOME=/root", "EMPTY=", "EQ=a=b", "=weird", "NOEQUALS"})

	assert.Equal(t, Env{"HOME": "/root", "EMPTY": "", "EQ": "a=b"}, env)
}

func TestEnv_Merge(t *testing.T) {
	base := Env{"A": "1", "B": "2"}
	merged := base.Merge(Env{"B": "3", "C": "4"})

	assert.Equal(t, Env{"A": "1", "B": "3", "C": "4"}, merged)
	assert.Equal(t, Env{"A": "1", "B": "2"}, base, "Merge must not mutate the receiver")
}

func TestEnv_PrependPath(t *testing.T) {
	env := Env{"PATH": "/usr/bin"}
	env.PrependPath("PATH", "/cache/rust/bin")
	env.PrependPath("LD_LIBRARY_PATH", "/cache/rust/lib")

	sep := string(os.PathListSeparator)
	assert.Equal(t, "/cache/rust/bin"+sep+"/usr/bin", env.Get("PATH"))
	assert.Equal(t, "/cache/rust/lib", env.Get("LD_LIBRARY_PATH"))
}

func TestEnv_Environ(t *testing.T) {
	env := Env{"B": "2", "A": "1"}
	assert.Equal(t, []string{"A=1", "B=2"}, env.Environ())
}
