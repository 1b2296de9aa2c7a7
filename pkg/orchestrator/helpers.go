package orchestrator

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// parseEnvList turns KEY=VALUE entries into a map. Later entries win.
func parseEnvList(entries []string) (map[string]string, error) {
	result := make(map[string]string, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, eris.Errorf("malformed env entry %q, expected KEY=VALUE", entry)
		}

		key := parts[0]
		if runtime.GOOS == "windows" {
			key = strings.ToUpper(key)
		}
		result[key] = parts[1]
	}

	return result, nil
}

func getEnvVars(base []string, overrides map[string]string) []string {
	shellEnv := make([]string, 0, len(base)+len(overrides))
	for _, item := range base {
		parts := strings.SplitN(item, "=", 2)
		if runtime.GOOS == "windows" {
			parts[0] = strings.ToUpper(parts[0])
		}

		// skip overriden entries to avoid conflicts
		if _, present := overrides[parts[0]]; !present {
			shellEnv = append(shellEnv, item)
		}
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		shellEnv = append(shellEnv, fmt.Sprintf("%s=%s", k, overrides[k]))
	}

	return shellEnv
}

// resolveDirs returns absolute paths for the build and source directory. An empty source directory means
// the parent of the build directory.
func resolveDirs(buildDir, sourceDir string) (string, string, error) {
	if buildDir == "" {
		return "", "", eris.New("no build directory configured")
	}

	absBuild, err := filepath.Abs(buildDir)
	if err != nil {
		return "", "", eris.Wrapf(err, "failed to resolve build directory %s", buildDir)
	}

	if sourceDir == "" {
		return absBuild, filepath.Dir(absBuild), nil
	}

	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", "", eris.Wrapf(err, "failed to resolve source directory %s", sourceDir)
	}

	return absBuild, absSource, nil
}
