package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrUnknownShape      = errors.New("knowledge base has neither pests_diseases nor pests/diseases sections")
	ErrMalformedDocument = errors.New("malformed knowledge base document")
)

const (
	sectionCombined = "pests_diseases"
	sectionPests    = "pests"
	sectionDiseases = "diseases"
)

// LoadKnowledgeBase reads the knowledge base at path. It never fails: a
// missing or malformed file yields an empty base and a warning.
func LoadKnowledgeBase(path string, logger *zap.Logger) *domain.KnowledgeBase {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("knowledge base not readable, starting with empty base",
			zap.String("path", path), zap.Error(err))
		return domain.EmptyKnowledgeBase()
	}

	kb, dropped, err := ParseKnowledgeBase(data)
	if err != nil {
		logger.Warn("knowledge base malformed, starting with empty base",
			zap.String("path", path), zap.Error(err))
		return domain.EmptyKnowledgeBase()
	}
	for _, e := range dropped {
		logger.Warn("duplicate knowledge base key dropped", zap.String("key", e.Key))
	}

	logger.Info("knowledge base loaded",
		zap.String("path", path),
		zap.Int("entries", kb.Len()))
	return kb
}

// ParseKnowledgeBase decodes either supported document shape into a
// knowledge base, keeping entries in document order. Entries whose key was
// already seen are returned as dropped.
func ParseKnowledgeBase(data []byte) (*domain.KnowledgeBase, []*domain.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var entries []*domain.Entry
	found := false
	for dec.More() {
		section, err := readKey(dec)
		if err != nil {
			return nil, nil, err
		}

		var fallback domain.Category
		switch section {
		case sectionCombined:
		case sectionPests:
			fallback = domain.CategoryPest
		case sectionDiseases:
			fallback = domain.CategoryDisease
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
			}
			continue
		}

		found = true
		sectionEntries, err := decodeSection(dec, fallback)
		if err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", section, err)
		}
		entries = append(entries, sectionEntries...)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, ErrUnknownShape
	}

	kb, dropped := domain.NewKnowledgeBase(entries)
	return kb, dropped, nil
}

// decodeSection reads one {key: entry} object. fallback fills in entries
// that carry no category of their own.
func decodeSection(dec *json.Decoder, fallback domain.Category) ([]*domain.Entry, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var out []*domain.Entry
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		e := &domain.Entry{}
		if err := dec.Decode(e); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrMalformedDocument, key, err)
		}
		e.Key = key
		e.Category = domain.CleanCategory(string(e.Category))
		if e.Category == "" {
			e.Category = fallback
		}
		if e.Category == "" {
			e.Category = domain.CategoryUnknown
		}
		out = append(out, e)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return out, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected end of document", ErrMalformedDocument)
		}
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformedDocument, want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected object key, got %v", ErrMalformedDocument, tok)
	}
	return key, nil
}
