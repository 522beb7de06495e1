package config

import (
	"fmt"

	"github.com/cognicore/newsprep/pkg/newsprep/fields"
	"github.com/cognicore/newsprep/pkg/newsprep/ingest"
	"github.com/cognicore/newsprep/pkg/newsprep/stoplist"
)

// Loader loads configuration files and constructs components
type Loader struct {
	// StoplistPath replaces the built-in English list when set.
	StoplistPath  string
	StopwordsAdd  []string
	StopwordsKeep []string
	StripHTML     bool
}

// Components holds the immutable pieces a pipeline is built from.
type Components struct {
	Registry   *fields.Registry
	Stopwords  *stoplist.Set
	Normalizer *ingest.Normalizer
}

// Load reads the configured files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Registry: fields.DefaultRegistry()}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stopwords = stoplist.New(sl.Terms)
	} else {
		comp.Stopwords = stoplist.English()
	}
	if len(l.StopwordsAdd) > 0 {
		comp.Stopwords = comp.Stopwords.With(l.StopwordsAdd...)
	}
	if len(l.StopwordsKeep) > 0 {
		comp.Stopwords = comp.Stopwords.Without(l.StopwordsKeep...)
	}

	comp.Normalizer = ingest.NewDefaultNormalizer(comp.Registry, comp.Stopwords).WithHTMLStripping(l.StripHTML)
	return comp, nil
}
