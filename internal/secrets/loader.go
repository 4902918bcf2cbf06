package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where an API key or password can come from.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline value from configuration or environment.
	Value string
	// File points to a file holding the value. It wins over Value.
	File string
	// Env lists environment variables consulted, in order, when neither File
	// nor Value is set.
	Env []string
}

// Load resolves the secret. File takes precedence over Value, Value over Env.
// The result is trimmed and must not be empty.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	for _, key := range src.Env {
		if secret := strings.TrimSpace(os.Getenv(key)); secret != "" {
			return secret, nil
		}
	}

	if len(src.Env) > 0 {
		return "", fmt.Errorf("%s is not configured (checked %s)", name, strings.Join(src.Env, ", "))
	}
	return "", fmt.Errorf("%s is not configured", name)
}

// Optional behaves like Load but treats a missing secret as empty.
// Read errors for an explicitly configured file are still returned.
func Optional(src Source) (string, error) {
	if strings.TrimSpace(src.File) != "" {
		return Load(src)
	}
	secret, err := Load(src)
	if err != nil {
		return "", nil
	}
	return secret, nil
}
