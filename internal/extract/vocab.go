// Package extract implements the document extraction core: numeric and year
// normalization, table-orientation detection, KPI pattern extraction,
// narrative section extraction, and sector detection. Every function here is
// a pure transform of its inputs; extraction misses are reported as absent
// values, never as errors.
package extract

import (
	_ "embed"
	"regexp"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var vocabYAML []byte

// GeneralSector is the catch-all sector when no keyword set scores.
const GeneralSector = "General Business"

// MetricVocab is one (keywords, metric) pair. Metric vocabularies are
// evaluated in slice order; the first match wins.
type MetricVocab struct {
	Metric   string   `yaml:"metric"`
	Keywords []string `yaml:"keywords"`
}

// SectionVocab names a narrative section and its header pattern.
type SectionVocab struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// SectorVocab holds one sector's detection keywords and template defaults.
type SectorVocab struct {
	Name           string   `yaml:"name"`
	Keywords       []string `yaml:"keywords"`
	Certifications []string `yaml:"certifications"`
	Customers      []string `yaml:"customers"`
}

// Vocabulary is the immutable set of fixed extraction vocabularies, loaded
// once at process start and injected into each extractor.
type Vocabulary struct {
	Metrics        []MetricVocab  `yaml:"metrics"`
	Sections       []SectionVocab `yaml:"sections"`
	Certifications []string       `yaml:"certifications"`
	Regions        []string       `yaml:"regions"`
	Sectors        []SectorVocab  `yaml:"sectors"`

	certRE []*regexp.Regexp
}

// LoadVocabulary parses and compiles the embedded vocabulary file.
func LoadVocabulary() (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(vocabYAML, &v); err != nil {
		return nil, eris.Wrap(err, "vocab: unmarshal")
	}
	if err := v.compile(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *Vocabulary) compile() error {
	for i := range v.Sections {
		re, err := regexp.Compile("(?i)" + v.Sections[i].Pattern)
		if err != nil {
			return eris.Wrapf(err, "vocab: compile section %s", v.Sections[i].Name)
		}
		v.Sections[i].re = re
	}
	v.certRE = make([]*regexp.Regexp, 0, len(v.Certifications))
	for _, p := range v.Certifications {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return eris.Wrapf(err, "vocab: compile certification %s", p)
		}
		v.certRE = append(v.certRE, re)
	}
	return nil
}

// SectionRE returns the compiled header pattern for a named section, or nil
// if the section is unknown.
func (v *Vocabulary) SectionRE(name string) *regexp.Regexp {
	for i := range v.Sections {
		if v.Sections[i].Name == name {
			return v.Sections[i].re
		}
	}
	return nil
}

// Sector returns the sector entry by name, falling back to General Business.
func (v *Vocabulary) Sector(name string) SectorVocab {
	var general SectorVocab
	for _, s := range v.Sectors {
		if s.Name == name {
			return s
		}
		if s.Name == GeneralSector {
			general = s
		}
	}
	return general
}

var (
	defaultVocabOnce sync.Once
	defaultVocab     *Vocabulary
)

// DefaultVocabulary returns the process-wide vocabulary loaded from the
// embedded file. Panics if the embedded data is malformed, which can only
// happen from a bad edit to vocab.yaml.
func DefaultVocabulary() *Vocabulary {
	defaultVocabOnce.Do(func() {
		v, err := LoadVocabulary()
		if err != nil {
			panic(err)
		}
		defaultVocab = v
	})
	return defaultVocab
}
