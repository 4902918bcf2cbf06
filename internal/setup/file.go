package setup

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/spigell/jobfit/internal/interview"
)

// LoadRoleFile reads a role profile from a yaml, json or toml file. Keys use
// the kebab-case names of the configuration file, e.g. company-name.
func LoadRoleFile(path string) (interview.RoleProfile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return interview.RoleProfile{}, fmt.Errorf("reading role file: %w", err)
	}

	settings := v.AllSettings()
	if nested, ok := settings["role"].(map[string]any); ok {
		settings = nested
	}

	var role interview.RoleProfile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &role,
	})
	if err != nil {
		return interview.RoleProfile{}, err
	}
	if err := decoder.Decode(settings); err != nil {
		return interview.RoleProfile{}, fmt.Errorf("decoding role file %q: %w", path, err)
	}

	role.Normalize()
	return role, nil
}
