package domain

import "strings"

// DefaultStatus is shown for links that carry no explicit status.
const DefaultStatus = "active"

// ConfigExt is the file extension of configuration names ("home.yaml").
const ConfigExt = ".yaml"

// Configuration is the named hierarchy of categories and links shown on the
// dashboard. It is owned by the backend and never mutated by the client.
type Configuration struct {
	Metadata   Metadata   `json:"metadata" yaml:"metadata"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Metadata describes a configuration. Only Name is used for display.
type Metadata struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Category is a titled group of links.
type Category struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Icon is operator-authored markup and is rendered verbatim.
	Icon *string `json:"icon,omitempty" yaml:"icon,omitempty"`

	Links []Link `json:"links" yaml:"links"`
}

// Link is a single navigable entry.
type Link struct {
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`

	// Status is free-form ("active", "maintenance", "deprecated", ...).
	// Nil means DefaultStatus.
	Status *string `json:"status,omitempty" yaml:"status,omitempty"`

	// Icon is carried through but not rendered for links.
	Icon *string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// IconOrEmpty returns the category icon or "" when absent.
func (c Category) IconOrEmpty() string {
	if c.Icon == nil {
		return ""
	}
	return *c.Icon
}

// StatusOrDefault returns the link status, falling back to DefaultStatus when
// the field is absent or empty.
func (l Link) StatusOrDefault() string {
	if l.Status == nil || *l.Status == "" {
		return DefaultStatus
	}
	return *l.Status
}

// DisplayName strips the configuration file extension for selector labels.
// Example: "home.yaml" -> "home"
func DisplayName(configName string) string {
	return strings.TrimSuffix(configName, ConfigExt)
}

// Ptr returns a pointer to v. Used to build optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// DefaultConfiguration is written to default.yaml when a configuration
// directory holds no dashboards yet.
func DefaultConfiguration(name, description string) Configuration {
	return Configuration{
		Metadata: Metadata{
			Name:        name,
			Description: description,
			Version:     "1.0.0",
			Tags:        []string{"default"},
		},
		Categories: []Category{
			{
				Name:        "Development",
				Description: "Development tools and environments",
				Links: []Link{
					{
						Name:        "Local Development",
						URL:         "http://localhost:3000",
						Description: "Local development server",
						Tags:        []string{"dev", "local"},
						Status:      Ptr(DefaultStatus),
					},
				},
			},
		},
	}
}
