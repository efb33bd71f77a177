package doc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// RuntimeConfig gates the `fs` and `time` libraries' access to the host
// machine (spec §6's "Environment" paragraph: no environment is
// mandated, but fs/time libraries may read optional configuration).
// BaseDir sandboxes FileRead/FileWrite/FileGlob to one directory tree the
// way original_source's engines are typically embedded with a fixed
// project root; AllowFS off denies all three outright.
type RuntimeConfig struct {
	AllowFS bool
	BaseDir string
	Env     map[string]string
}

// DefaultRuntimeConfig allows filesystem access rooted at the current
// working directory, with no .env overlay loaded.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{AllowFS: true, BaseDir: ".", Env: map[string]string{}}
}

// LoadDotenv overlays envPath's KEY=VALUE pairs onto Env (grounded in the
// teacher's joho/godotenv usage for layered config), leaving existing keys
// untouched on a read error other than the file being absent.
func (c *RuntimeConfig) LoadDotenv(envPath string) error {
	vars, err := godotenv.Read(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load dotenv %q: %w", envPath, err)
	}
	if c.Env == nil {
		c.Env = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		c.Env[k] = v
	}
	return nil
}

// resolvePath joins path under BaseDir and rejects any result that
// escapes it (spec §5's permission model: a sandboxed Host may refuse
// filesystem calls outright; here the refusal is "outside BaseDir").
func (c *RuntimeConfig) resolvePath(path string) (string, error) {
	base := c.BaseDir
	if base == "" {
		base = "."
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absBase, path)
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory %q", path, absBase)
	}
	return absFull, nil
}
