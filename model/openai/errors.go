package openai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigurationConflict is matched by ConfigurationConflictError.
	ErrConfigurationConflict = errors.New("openai: conflicting provider configuration")

	// ErrClientConstruction is matched by ClientConstructionError.
	ErrClientConstruction = errors.New("openai: cannot construct client")
)

// ConfigurationConflictError is returned by NewProvider when a pre-built
// client is combined with settings that would only apply to a client the
// provider builds itself.
type ConfigurationConflictError struct {
	// Fields lists the conflicting option names.
	Fields []string
}

func (e *ConfigurationConflictError) Error() string {
	return fmt.Sprintf("openai: do not set %s when providing a client", strings.Join(e.Fields, ", "))
}

// Is reports whether target is ErrConfigurationConflict.
func (e *ConfigurationConflictError) Is(target error) bool { return target == ErrConfigurationConflict }

// ClientConstructionError is returned by NewStandardClient and NewAzureClient
// when a required setting is missing. Providers hand it to the caller as is.
type ClientConstructionError struct {
	Backend Kind
	Missing string
}

func (e *ClientConstructionError) Error() string {
	return fmt.Sprintf("openai: cannot construct %s client: missing %s", e.Backend, e.Missing)
}

// Is reports whether target is ErrClientConstruction.
func (e *ClientConstructionError) Is(target error) bool { return target == ErrClientConstruction }
