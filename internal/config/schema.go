package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeEnum
	TypeList
	TypeMap
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key name (e.g., "releases_url")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"repo_path": {
		Path:        "repo_path",
		Type:        TypeString,
		Description: "Path inside the repository to read",
		Default:     "",
	},
	"ref": {
		Path:        "ref",
		Type:        TypeString,
		Description: "Revision to walk history from (empty = HEAD)",
		Default:     "",
	},
	"format": {
		Path:          "format",
		Type:          TypeEnum,
		AllowedValues: []string{"markdown", "md", "rst", "yaml", "terminal"},
		Description:   "Output format",
		Default:       "markdown",
	},
	"output": {
		Path:        "output",
		Type:        TypeString,
		Description: "Output file (empty = stdout)",
		Default:     "",
	},
	"groups": {
		Path:        "groups",
		Type:        TypeList,
		Description: "Categories to include; \"*\" includes all",
		Default:     []string{"feat", "fix"},
	},
	"unreleased": {
		Path:        "unreleased",
		Type:        TypeBool,
		Description: "Include commits made after the latest tag",
		Default:     false,
	},
	"releases_url": {
		Path:        "releases_url",
		Type:        TypeString,
		Description: "Release link template; {} is replaced by the tag name",
		Default:     "",
	},
	"issues_url": {
		Path:        "issues_url",
		Type:        TypeString,
		Description: "Issue link template (reserved, currently unused)",
		Default:     "",
	},
	"order": {
		Path:          "order",
		Type:          TypeEnum,
		AllowedValues: []string{"source", "newest", "oldest"},
		Description:   "Order of release sections",
		Default:       "source",
	},
	"date_source": {
		Path:          "date_source",
		Type:          TypeEnum,
		AllowedValues: []string{"committer", "author"},
		Description:   "Commit timestamp used to assign commits to releases",
		Default:       "committer",
	},
	"workers": {
		Path:        "workers",
		Type:        TypeInt,
		Description: "Parallel commit message parsers (0 = number of CPUs)",
		Default:     0,
	},
	"fetch": {
		Path:        "fetch",
		Type:        TypeBool,
		Description: "Fetch tags from all remotes before generating",
		Default:     false,
	},
	"title": {
		Path:        "title",
		Type:        TypeString,
		Description: "Document title",
		Default:     "Changelog",
	},
	"headings": {
		Path:        "headings",
		Type:        TypeMap,
		Description: "Category heading overrides, e.g. headings.feat",
		Default:     map[string]string{},
	},
}

// SortedKeys returns the names of all known keys in alphabetical order.
func SortedKeys() []string {
	return slices.Sorted(maps.Keys(KnownKeys))
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeList:
		return ParsedValue{Raw: value, Parsed: SplitList([]string{value}), Type: TypeList}, nil
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("%s values cannot be set from a string", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	if slices.Contains(schema.AllowedValues, value) {
		return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
