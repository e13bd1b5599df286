// Package cli holds flag plumbing shared by the guia subcommands.
package cli

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar overrides every other .env source when set.
const EnvFileVar = "GUIA_ENV_FILE"

// EnvLoader resolves which .env file to load. Resolution order: EnvFileVar,
// the -env flag value, that value's basename, then the default path. The
// first file that loads wins; loaded values override the inherited
// environment.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers the -env flag on the flag set and returns the loader
// bound to it.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Load walks the candidate paths and loads the first one that exists,
// returning the path it loaded.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	log.SetOutput(os.Stderr)

	if custom := strings.TrimSpace(os.Getenv(EnvFileVar)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			log.Printf("Loaded environment from %s: %s", EnvFileVar, custom)
			return custom, nil
		}
		log.Printf("Warning: failed to load %s=%s", EnvFileVar, custom)
	}

	candidates := l.candidates()
	for _, path := range candidates {
		if err := godotenv.Overload(path); err == nil {
			log.Printf("Loaded environment from %s", path)
			return path, nil
		}
	}

	return "", fmt.Errorf("no loadable env file among %s", strings.Join(candidates, ", "))
}

func (l *EnvLoader) candidates() []string {
	requested := l.defaultPath
	if l.value != nil && strings.TrimSpace(*l.value) != "" {
		requested = strings.TrimSpace(*l.value)
	}

	paths := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		paths = append(paths, base)
	}
	if requested != l.defaultPath {
		paths = append(paths, l.defaultPath)
	}
	return paths
}
