package bleveindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"riffbox/internal/search"
)

// textAnalyzer tokenizes on unicode word boundaries, lower-cases, and stems.
const textAnalyzer = "riffbox_text"

var stemmers = map[string]string{
	"fr": fr.SnowballStemmerName,
	"en": en.SnowballStemmerName,
}

var textFields = []string{
	search.FieldName,
	search.FieldArtist,
	search.FieldSong,
	search.FieldStyle,
	search.FieldTags,
}

var keyFields = []string{
	search.FieldPath,
	search.FieldVideoID,
}

// NewMapping builds the index mapping for language ("fr" or "en").
func NewMapping(language string) (*mapping.IndexMappingImpl, error) {
	if language == "" {
		language = "fr"
	}
	stemmer, ok := stemmers[language]
	if !ok {
		return nil, fmt.Errorf("unsupported search language: %q", language)
	}

	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(textAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			stemmer,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registering analyzer: %w", err)
	}
	m.DefaultAnalyzer = textAnalyzer

	doc := bleve.NewDocumentStaticMapping()
	for _, name := range textFields {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = textAnalyzer
		f.Store = true
		f.IncludeInAll = true
		doc.AddFieldMappingsAt(name, f)
	}
	for _, name := range keyFields {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		f.IncludeInAll = false
		f.IncludeTermVectors = false
		doc.AddFieldMappingsAt(name, f)
	}
	m.DefaultMapping = doc

	return m, nil
}
