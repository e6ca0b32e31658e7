package domain

import "strings"

type Category string

const (
	CategoryPest       Category = "pest"
	CategoryDisease    Category = "disease"
	CategoryDeficiency Category = "deficiency"
	CategoryHealthy    Category = "healthy"
	CategoryUnknown    Category = "unknown"
)

func ValidCategory(c string) bool {
	switch Category(c) {
	case CategoryPest, CategoryDisease, CategoryDeficiency, CategoryHealthy:
		return true
	}
	return false
}

// categoryPlurals maps the plural filter spellings to their category.
var categoryPlurals = map[string]Category{
	"pests":        CategoryPest,
	"diseases":     CategoryDisease,
	"deficiencies": CategoryDeficiency,
}

// CleanCategory trims and lowercases a stored category without any other
// rewriting, so "Virus" stays "virus".
func CleanCategory(c string) Category {
	return Category(strings.ToLower(strings.TrimSpace(c)))
}

// NormalizeCategory turns a search filter into a category. The known
// plurals ("pests", "diseases", "deficiencies") select their singular
// category; anything else is only cleaned.
func NormalizeCategory(c string) Category {
	clean := CleanCategory(c)
	if singular, ok := categoryPlurals[string(clean)]; ok {
		return singular
	}
	return clean
}

// TreatmentRecord is a treatment as stored in the knowledge base file.
// Priority and Effectiveness are optional there.
type TreatmentRecord struct {
	Method        string   `json:"method"`
	Treatment     string   `json:"treatment"`
	Application   string   `json:"application"`
	Timing        string   `json:"timing"`
	SafetyNotes   string   `json:"safety_notes"`
	Priority      *int     `json:"priority,omitempty"`
	Effectiveness *float64 `json:"effectiveness,omitempty"`
}

// Entry is a single pest, disease or deficiency record.
//
// AffectedCrops distinguishes absent (nil, matches every crop) from an
// explicit list; an explicit empty list matches no crop.
type Entry struct {
	Key              string            `json:"key"`
	Name             string            `json:"name"`
	CommonName       string            `json:"common_name,omitempty"`
	ScientificName   string            `json:"scientific_name,omitempty"`
	Category         Category          `json:"category"`
	Description      string            `json:"description,omitempty"`
	AlternativeNames []string          `json:"alternative_names,omitempty"`
	Symptoms         []string          `json:"symptoms,omitempty"`
	AffectedCrops    []string          `json:"affected_crops,omitempty"`
	Treatments       []TreatmentRecord `json:"treatments,omitempty"`
	Prevention       []string          `json:"prevention,omitempty"`
	Images           []string          `json:"images,omitempty"`
}

// DisplayName returns the name shown to users, falling back to the
// common name and finally the key.
func (e *Entry) DisplayName() string {
	switch {
	case e.Name != "":
		return e.Name
	case e.CommonName != "":
		return e.CommonName
	default:
		return e.Key
	}
}

// AffectsCrop reports whether the entry applies to crop.
func (e *Entry) AffectsCrop(crop string) bool {
	if e.AffectedCrops == nil {
		return true
	}
	crop = strings.ToLower(crop)
	for _, c := range e.AffectedCrops {
		c = strings.ToLower(c)
		if c == crop || c == "all" {
			return true
		}
	}
	return false
}

// KnowledgeBase is the immutable in-memory pest/disease catalog. It is
// built once by the store package and only read afterwards, so it is safe
// for concurrent use without locking.
type KnowledgeBase struct {
	entries map[string]*Entry
	order   []string
}

// NewKnowledgeBase builds a knowledge base from entries in document order.
// Entries with a key that was already seen are dropped and returned.
func NewKnowledgeBase(entries []*Entry) (*KnowledgeBase, []*Entry) {
	kb := &KnowledgeBase{entries: make(map[string]*Entry, len(entries))}
	var dropped []*Entry
	for _, e := range entries {
		if _, exists := kb.entries[e.Key]; exists {
			dropped = append(dropped, e)
			continue
		}
		kb.entries[e.Key] = e
		kb.order = append(kb.order, e.Key)
	}
	return kb, dropped
}

// EmptyKnowledgeBase is a valid base with no entries.
func EmptyKnowledgeBase() *KnowledgeBase {
	kb, _ := NewKnowledgeBase(nil)
	return kb
}

func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.order)
}

// Entries returns the entries in load order.
func (kb *KnowledgeBase) Entries() []*Entry {
	if kb == nil {
		return nil
	}
	out := make([]*Entry, 0, len(kb.order))
	for _, k := range kb.order {
		out = append(out, kb.entries[k])
	}
	return out
}

func (kb *KnowledgeBase) Get(key string) (*Entry, bool) {
	if kb == nil {
		return nil, false
	}
	e, ok := kb.entries[key]
	return e, ok
}

// CountByCategory returns the number of entries per category.
func (kb *KnowledgeBase) CountByCategory() map[Category]int {
	counts := make(map[Category]int)
	for _, e := range kb.Entries() {
		counts[e.Category]++
	}
	return counts
}
