// Package normalize turns raw input lines into the canonical form names are hashed in.
// Pipeline order
// 1 drop control characters and invalid UTF-8
// 2 Unicode NFC
// 3 strip format characters (ZWSP, ZWNJ, FEFF) and fold fullwidth forms
// 4 lowercase
// 5 optional UTS-46 mapping (strict mode)
// 6 trim surrounding whitespace and dots, strip the configured TLD suffix
package normalize

import (
	"strings"
	"sync"
	"unicode"

	perr "enscheck/internal/platform/errors"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Options configures the name policy
type Options struct {
	// Suffix is a TLD stripped from the end of a name, without the dot ("eth").
	// Empty keeps names as they are
	Suffix string

	// Strict runs UTS-46 mapping and rejects names the mapping refuses
	Strict bool
}

// Normalizer is concurrency safe
type Normalizer struct {
	suffix  string
	profile *idna.Profile
}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			cases.Lower(language.Und),
		)
	},
}

// New constructs a Normalizer
func New(opt Options) *Normalizer {
	n := &Normalizer{}
	if s := strings.Trim(strings.ToLower(strings.TrimSpace(opt.Suffix)), "."); s != "" {
		n.suffix = "." + s
	}
	if opt.Strict {
		// mapping only; emoji and other non IDNA2008 labels are valid registry names
		n.profile = idna.New(
			idna.MapForLookup(),
			idna.Transitional(false),
			idna.StrictDomainName(false),
			idna.ValidateLabels(false),
		)
	}
	return n
}

// Normalize returns the canonical form of s. An empty result means the line carries no name
func (n *Normalizer) Normalize(s string) (string, error) {
	s = Sanitize(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "normalize %q", s)
	}

	if n.profile != nil {
		mapped, err := n.profile.ToUnicode(ns)
		if err != nil {
			return "", perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "uts46 %q", s)
		}
		ns = mapped
	}

	ns = strings.Trim(strings.TrimSpace(ns), ".")
	if n.suffix != "" {
		ns = strings.TrimSuffix(ns, n.suffix)
	}
	return ns, nil
}
