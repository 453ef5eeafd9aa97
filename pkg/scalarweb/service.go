package scalarweb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Service represents one scalar web service of a device (system,
// accessControl, ...). It owns the transport to the service endpoint and
// the registry of methods the service advertises.
type Service struct {
	name      string
	transport Transport
	registry  *MethodRegistry
	logger    *slog.Logger

	nextID atomic.Uint32
}

// NewService creates a service backed by the given transport.
func NewService(name string, transport Transport) *Service {
	return &Service{
		name:      name,
		transport: transport,
		registry:  NewMethodRegistry(),
		logger:    slog.Default(),
	}
}

// SetLogger sets the logger for this service.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Name returns the service name.
func (s *Service) Name() string {
	return s.name
}

// Transport returns the service's transport.
func (s *Service) Transport() Transport {
	return s.transport
}

// Registry returns the service's method registry.
func (s *Service) Registry() *MethodRegistry {
	return s.registry
}

// HasMethod returns true if the service advertises the method. A service
// whose method discovery failed advertises nothing.
func (s *Service) HasMethod(name string) bool {
	return s.registry.Has(name)
}

// Execute sends a method call using the registered version of the method,
// falling back to DefaultVersion for unknown methods.
func (s *Service) Execute(ctx context.Context, method string, params ...any) (*Result, error) {
	version, ok := s.registry.Version(method)
	if !ok {
		version = DefaultVersion
	}
	return s.ExecuteVersion(ctx, version, method, params...)
}

// ExecuteVersion sends a method call at an explicit version.
func (s *Service) ExecuteVersion(ctx context.Context, version, method string, params ...any) (*Result, error) {
	req := NewRequest(s.requestID(), method, version, params...)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	res, err := s.transport.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s.%s failed: %w", s.name, method, err)
	}
	return res, nil
}

// ExecuteWithBasicAuth sends a method call with one-shot HTTP basic
// credentials, using the registered version of the method. Registration
// answers a PIN challenge this way.
func (s *Service) ExecuteWithBasicAuth(ctx context.Context, username, password, method string, params ...any) (*Result, error) {
	version, ok := s.registry.Version(method)
	if !ok {
		version = DefaultVersion
	}

	req := NewRequest(s.requestID(), method, version, params...)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	res, err := s.transport.ExecuteWithBasicAuth(ctx, req, username, password)
	if err != nil {
		return nil, fmt.Errorf("%s.%s failed: %w", s.name, method, err)
	}
	return res, nil
}

// requestID returns the next request id. IDs start at 1; 0 is reserved.
func (s *Service) requestID() int {
	return int(s.nextID.Add(1))
}

// DiscoverMethods populates the method registry by asking the service for
// its supported versions and the method signatures of each. Failure to list
// the methods of one version does not abort discovery of the others.
func (s *Service) DiscoverMethods(ctx context.Context) error {
	res, err := s.ExecuteVersion(ctx, DefaultVersion, MethodGetVersions)
	if err != nil {
		return fmt.Errorf("failed to discover versions: %w", err)
	}
	if !res.Succeeded() {
		return fmt.Errorf("getVersions rejected: %s", res.ErrorMessage())
	}

	var versions []string
	if err := res.Decode(&versions); err != nil {
		return fmt.Errorf("failed to decode versions: %w", err)
	}

	for _, version := range versions {
		if err := s.discoverMethodTypes(ctx, version); err != nil {
			s.logger.Debug("method type discovery failed",
				"service", s.name,
				"version", version,
				"error", err)
		}
	}

	return nil
}

// discoverMethodTypes registers the methods of one API version.
func (s *Service) discoverMethodTypes(ctx context.Context, version string) error {
	res, err := s.ExecuteVersion(ctx, DefaultVersion, MethodGetMethodTypes, version)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		return fmt.Errorf("getMethodTypes rejected: %s", res.ErrorMessage())
	}

	for _, raw := range res.Payload {
		name, methodVersion, err := parseMethodType(raw)
		if err != nil {
			s.logger.Debug("skipping malformed method type entry",
				"service", s.name,
				"error", err)
			continue
		}
		s.registry.Add(name, methodVersion)
	}

	return nil
}

// parseMethodType decodes one getMethodTypes entry. Entries are arrays of
// the form [name, [paramTypes], [returnTypes], version].
func parseMethodType(raw json.RawMessage) (name, version string, err error) {
	var entry []json.RawMessage
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", "", fmt.Errorf("failed to decode method type entry: %w", err)
	}
	if len(entry) < 4 {
		return "", "", fmt.Errorf("method type entry has %d elements, expected 4", len(entry))
	}

	if err := json.Unmarshal(entry[0], &name); err != nil {
		return "", "", fmt.Errorf("failed to decode method name: %w", err)
	}
	if err := json.Unmarshal(entry[len(entry)-1], &version); err != nil {
		return "", "", fmt.Errorf("failed to decode method version: %w", err)
	}
	if name == "" {
		return "", "", fmt.Errorf("empty method name")
	}

	return name, version, nil
}
