package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadPersonaList returns the built-in persona names followed by any
// personas/*.yaml files under dir that do not shadow a built-in.
func LoadPersonaList(dir string) ([]string, error) {
	custom, err := listYAMLFiles(filepath.Join(dir, "personas"))
	if err != nil {
		return nil, err
	}
	sort.Strings(custom)

	names := PresetNames()
	for _, name := range custom {
		if _, builtin := presets[name]; !builtin {
			names = append(names, name)
		}
	}
	return names, nil
}

func listYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, stripExt(name))
		}
	}

	return names, nil
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
