package clients

// ExternalSource represents different external question providers
type ExternalSource string

const (
	// ExternalSourceOpenTDB represents the Open Trivia Database API
	ExternalSourceOpenTDB ExternalSource = "opentdb"

	// ExternalSourceGenerated represents LLM-generated questions
	ExternalSourceGenerated ExternalSource = "generated"

	// ExternalSourceManual represents manually entered questions
	ExternalSourceManual ExternalSource = "manual"
)

// ExternalSourceConfig holds configuration for external sources
type ExternalSourceConfig struct {
	Source      ExternalSource `json:"source"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Priority    int            `json:"priority"` // Higher priority sources override lower ones
	Active      bool           `json:"active"`
}

// GetExternalSources returns all configured external sources. OpenTDB
// only covers adult-level material, so generated questions lead for
// the younger bands.
func GetExternalSources() map[ExternalSource]ExternalSourceConfig {
	return map[ExternalSource]ExternalSourceConfig{
		ExternalSourceGenerated: {
			Source:      ExternalSourceGenerated,
			Name:        "Generated",
			Description: "LLM-generated age-banded questions",
			Priority:    100,
			Active:      true,
		},
		ExternalSourceOpenTDB: {
			Source:      ExternalSourceOpenTDB,
			Name:        "OpenTDB",
			Description: "Open Trivia Database, adults band only",
			Priority:    90,
			Active:      true,
		},
		ExternalSourceManual: {
			Source:      ExternalSourceManual,
			Name:        "Manual Entry",
			Description: "Manually entered questions",
			Priority:    10,
			Active:      true,
		},
	}
}

// ValidateExternalSource checks if the source is valid
func ValidateExternalSource(source ExternalSource) bool {
	sources := GetExternalSources()
	_, exists := sources[source]
	return exists
}

// GetActiveExternalSources returns only active external sources
func GetActiveExternalSources() map[ExternalSource]ExternalSourceConfig {
	all := GetExternalSources()
	active := make(map[ExternalSource]ExternalSourceConfig)

	for source, config := range all {
		if config.Active {
			active[source] = config
		}
	}

	return active
}
