package connectors

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/logger"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory is the static catalogue of connector registrations. Entries
// are added at process start; Create builds a fresh connector from its
// registration each call.
type Factory struct {
	mu   sync.Mutex
	regs map[domain.SourceType]driven.ConnectorRegistration
	log  zerolog.Logger
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{
		regs: make(map[domain.SourceType]driven.ConnectorRegistration),
		log:  logger.With("connector-factory"),
	}
}

// Register adds a registration to the catalogue. Re-registering a source
// overrides the previous entry.
func (f *Factory) Register(reg driven.ConnectorRegistration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.regs[reg.Source]; exists {
		f.log.Warn().Str("source", string(reg.Source)).Msg("overriding connector registration")
	}
	f.regs[reg.Source] = reg
}

// Create builds a fresh connector for the source with its registered
// defaults.
func (f *Factory) Create(source domain.SourceType) (driven.Connector, error) {
	f.mu.Lock()
	reg, ok := f.regs[source]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	if !reg.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceDisabled, source)
	}

	conn, err := reg.Build(reg.Defaults)
	if err != nil {
		return nil, fmt.Errorf("build %s connector: %w", source, err)
	}
	return conn, nil
}

// Registration returns a copy of the catalogue entry for a source.
func (f *Factory) Registration(source domain.SourceType) (*driven.ConnectorRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reg, ok := f.regs[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, source)
	}
	return &reg, nil
}

// SupportedSources returns all registered source types.
func (f *Factory) SupportedSources() []domain.SourceType {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.SourceType, 0, len(f.regs))
	for source := range f.regs {
		out = append(out, source)
	}
	return out
}
