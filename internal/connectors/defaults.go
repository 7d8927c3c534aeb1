package connectors

import (
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/connectors/github"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/connectors/newsapi"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/connectors/twitter"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/connectors/youtube"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/domain"
	"github.com/Alex-GaRz/LeadBoostAI-sub000/internal/core/ports/driven"
)

// DefaultFactory builds the production catalogue: every shipped provider
// registered with its configured settings. A provider whose credential is
// absent stays in the catalogue but disabled, so listings can still show
// it while creation is refused.
func DefaultFactory(store driven.ConfigStore) *Factory {
	f := NewFactory()
	RegisterDefaults(f, store)
	return f
}

// RegisterDefaults (re-)registers every shipped provider with settings
// resolved from the config store. Called again after a config reload to
// pick up rotated credentials for newly built connectors.
func RegisterDefaults(f *Factory, store driven.ConfigStore) {
	twitterCfg := store.ConnectorConfig(domain.SourceTwitter, twitter.Defaults())
	f.Register(driven.ConnectorRegistration{
		Source: domain.SourceTwitter,
		Build: func(cfg domain.ConnectorConfig) (driven.Connector, error) {
			return twitter.New(cfg)
		},
		Enabled:  twitterCfg.Credential(twitter.CredentialBearerToken) != "",
		Defaults: twitterCfg,
	})

	newsCfg := store.ConnectorConfig(domain.SourceNews, newsapi.Defaults())
	f.Register(driven.ConnectorRegistration{
		Source: domain.SourceNews,
		Build: func(cfg domain.ConnectorConfig) (driven.Connector, error) {
			return newsapi.New(cfg)
		},
		Enabled:  newsCfg.Credential(newsapi.CredentialAPIKey) != "",
		Defaults: newsCfg,
	})

	githubCfg := store.ConnectorConfig(domain.SourceGitHub, github.Defaults())
	f.Register(driven.ConnectorRegistration{
		Source: domain.SourceGitHub,
		Build: func(cfg domain.ConnectorConfig) (driven.Connector, error) {
			return github.New(cfg)
		},
		Enabled:  githubCfg.Credential(github.CredentialToken) != "",
		Defaults: githubCfg,
	})

	youtubeCfg := store.ConnectorConfig(domain.SourceYouTube, youtube.Defaults())
	f.Register(driven.ConnectorRegistration{
		Source: domain.SourceYouTube,
		Build: func(cfg domain.ConnectorConfig) (driven.Connector, error) {
			return youtube.New(cfg)
		},
		Enabled:  youtubeCfg.Credential(youtube.CredentialAPIKey) != "",
		Defaults: youtubeCfg,
	})
}
