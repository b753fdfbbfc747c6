// Package cookiejar stores a session's cookies in a file between runs.
//
// Files ending in .json are written as JSON; anything else is YAML. A
// missing file loads as an empty jar.
package cookiejar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load reads the jar at path. A missing file, or no path, is an empty jar.
func Load(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	cookies := make(map[string]string)
	if isJSON(path) {
		err = json.Unmarshal(data, &cookies)
	} else {
		err = yaml.Unmarshal(data, &cookies)
	}
	if err != nil {
		return nil, fmt.Errorf("parse cookie jar %s: %w", path, err)
	}
	return cookies, nil
}

// Save writes cookies to path with owner-only permissions, since the jar
// usually holds session credentials.
func Save(path string, cookies map[string]string) error {
	if cookies == nil {
		cookies = map[string]string{}
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(cookies, "", "  ")
	} else {
		data, err = yaml.Marshal(cookies)
	}
	if err != nil {
		return fmt.Errorf("encode cookie jar: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create cookie jar directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0600)
}
