package module

import (
	"time"

	"enscheck/internal/adapters/registry/ens"
	"enscheck/internal/platform/config"
	perr "enscheck/internal/platform/errors"
	"enscheck/internal/platform/net/http/bind"
	"enscheck/internal/services/resolve/domain"
)

// Options controls the resolver, its registry client and the HTTP surface
type Options struct {
	BatchSize int           `validate:"gt=0,lte=1000"` // domain.MaxBatchSize
	Delay     time.Duration `validate:"gte=0"`
	Scheme    string        `validate:"oneof=labelhash namehash"`
	TLD       string        // appended before hashing under the namehash scheme
	Suffix    string        // stripped by the normalizer
	Strict    bool          // UTS-46 mapping

	// registry client
	ENSURL       string        `validate:"required,url"`
	ENSTimeout   time.Duration `validate:"gt=0"`
	ENSUserAgent string
	ENSAPIKey    string

	// postgres sink
	PGStatementTimeout time.Duration `validate:"gte=0"` // SET LOCAL per write tx; 0 keeps the server default

	// HTTP surface
	MaxNames int    `validate:"gt=0"`
	APIToken string // empty leaves the routes open
}

// FromConfig reads CORE_RESOLVE_* and CORE_ENS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_RESOLVE_")
	ec := cfg.Prefix("CORE_ENS_")
	return Options{
		BatchSize: rc.MayInt("BATCH_SIZE", domain.DefaultBatchSize),
		Delay:     rc.MayDuration("DELAY", domain.DefaultDelay),
		Scheme:    rc.MayEnum("SCHEME", string(domain.SchemeLabelHash), string(domain.SchemeLabelHash), string(domain.SchemeNameHash)),
		TLD:       rc.MayString("TLD", "eth"),
		Suffix:    rc.MayString("SUFFIX", "eth"),
		Strict:    rc.MayBool("STRICT", false),
		MaxNames:  rc.MayInt("API_MAX_NAMES", 500),
		APIToken:  rc.MayString("API_TOKEN", ""),

		PGStatementTimeout: rc.MayDuration("PG_STATEMENT_TIMEOUT", 30*time.Second),

		ENSURL:       ec.MayString("URL", ens.DefaultURL),
		ENSTimeout:   ec.MayDuration("TIMEOUT", 30*time.Second),
		ENSUserAgent: ec.MayString("USER_AGENT", "enscheck"),
		ENSAPIKey:    ec.MayString("API_KEY", ""),
	}
}

// Validate checks the options with the shared validator
func (o Options) Validate() error {
	return perr.WrapIf(bind.Validate(o), perr.ErrorCodeValidation, "resolve options")
}
