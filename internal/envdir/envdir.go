// Package envdir imports build configuration from a buildpack env directory.
//
// Each regular file in the directory names a variable and holds its value.
// Variables that would corrupt the host's own search paths are never imported.
package envdir

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Blacklist matches variables that are never imported, whatever the whitelist says
var Blacklist = regexp.MustCompile(`^(PATH|GIT_DIR|CPATH|CPPATH|LD_PRELOAD|LIBRARY_PATH|LD_LIBRARY_PATH)$`)

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Env is an explicit set of environment variables
type Env map[string]string

// Options controls which variables Load imports
type Options struct {
	// Whitelist, if set, restricts imports to matching names
	Whitelist *regexp.Regexp
}

// Load reads every importable variable from dir.
// A missing directory yields an empty Env. Any other failure to list dir also
// yields an empty Env, along with the error so the caller can report it.
// Files that cannot be read are skipped.
func Load(dir string, opts Options) (Env, error) {
	env := Env{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return env, nil
		}

		return env, eris.Wrapf(err, "failed to read env directory %s", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !Importable(name, opts.Whitelist) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		env[name] = strings.TrimRight(string(data), "\n")
	}

	return env, nil
}

// Importable reports whether a variable named name may be imported
func Importable(name string, whitelist *regexp.Regexp) bool {
	if !validName.MatchString(name) || Blacklist.MatchString(name) {
		return false
	}

	return whitelist == nil || whitelist.MatchString(name)
}

// FromEnviron builds an Env from KEY=VALUE pairs such as os.Environ()
func FromEnviron(environ []string) Env {
	env := make(Env, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		env[key] = value
	}

	return env
}

// Clone returns a copy of e
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}

	return out
}

// Merge returns a copy of e overlaid with other
func (e Env) Merge(other Env) Env {
	out := e.Clone()
	for k, v := range other {
		out[k] = v
	}

	return out
}

// Get returns the value of key, or "" if unset
func (e Env) Get(key string) string {
	return e[key]
}

// Lookup returns the value of key and whether it is set
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// PrependPath adds dir to the front of the list variable key
func (e Env) PrependPath(key, dir string) {
	if cur := e[key]; cur != "" {
		e[key] = dir + string(os.PathListSeparator) + cur
		return
	}

	e[key] = dir
}

// Environ returns e as sorted KEY=VALUE pairs, suitable for exec.Cmd.Env
func (e Env) Environ() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}

	sort.Strings(out)

	return out
}
