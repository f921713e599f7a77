package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/elcatools/elca2ifc/internal/ifc"
)

type PersonConfig struct {
	GivenName  string `toml:"given_name"`
	FamilyName string `toml:"family_name"`
}

type OrganizationConfig struct {
	Name string `toml:"name"`
}

type ApplicationConfig struct {
	Name    string `toml:"name"`
	ID      string `toml:"id"`
	Version string `toml:"version"`
}

type LibraryConfig struct {
	ProjectName string `toml:"project_name"`
	Name        string `toml:"name"`
	Version     string `toml:"version"`
}

type Config struct {
	Person       PersonConfig       `toml:"person"`
	Organization OrganizationConfig `toml:"organization"`
	Application  ApplicationConfig  `toml:"application"`
	Library      LibraryConfig      `toml:"library"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}

// BuildOptions maps the configured identity onto the library builder's
// options. Empty fields keep the builder defaults.
func (c *Config) BuildOptions() ifc.BuildOptions {
	return ifc.BuildOptions{
		PersonGivenName:  c.Person.GivenName,
		PersonFamilyName: c.Person.FamilyName,
		OrganizationName: c.Organization.Name,

		ApplicationName:    c.Application.Name,
		ApplicationID:      c.Application.ID,
		ApplicationVersion: c.Application.Version,

		ProjectName:    c.Library.ProjectName,
		LibraryName:    c.Library.Name,
		LibraryVersion: c.Library.Version,
	}
}
