package provider

import (
	"strings"
)

// DefaultTag is used when a service specifier carries no tag.
const DefaultTag = "current"

const serviceField = "client.service"

// ServiceReference identifies one tagged schema of a registry service.
type ServiceReference struct {
	ID  string
	Tag string
}

func (r ServiceReference) String() string {
	return r.ID + "@" + r.Tag
}

// ParseServiceSpecifier parses "<id>" or "<id>@<tag>". Anything else,
// including non-string values, is a ConfigurationError.
func ParseServiceSpecifier(specifier any) (ServiceReference, error) {
	raw, ok := specifier.(string)
	if !ok {
		return ServiceReference{}, &ConfigurationError{
			Field:  serviceField,
			Value:  specifier,
			Reason: "service name not found for client",
		}
	}

	parts := strings.Split(raw, "@")
	if len(parts) > 2 {
		return ServiceReference{}, &ConfigurationError{
			Field:  serviceField,
			Value:  raw,
			Reason: "service specifier must have the form <id> or <id>@<tag>",
		}
	}

	ref := ServiceReference{ID: strings.TrimSpace(parts[0]), Tag: DefaultTag}
	if ref.ID == "" {
		return ServiceReference{}, &ConfigurationError{
			Field:  serviceField,
			Value:  raw,
			Reason: "service id must not be empty",
		}
	}

	if len(parts) == 2 {
		ref.Tag = strings.TrimSpace(parts[1])
		if ref.Tag == "" {
			return ServiceReference{}, &ConfigurationError{
				Field:  serviceField,
				Value:  raw,
				Reason: "tag must not be empty when @ is present",
			}
		}
	}

	return ref, nil
}
