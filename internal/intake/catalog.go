package intake

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Topic is a named block of follow-up questions asked together.
type Topic struct {
	Name      string   `json:"name" yaml:"name"`
	Questions []string `json:"questions" yaml:"questions"`
}

// Catalog is the ordered, read-only set of topics. Declaration order is
// significant: the keyword index resolves collisions in favour of the
// earlier topic.
type Catalog struct {
	topics []Topic
	byName map[string]int
}

func NewCatalog(topics ...Topic) (Catalog, error) {
	c := Catalog{
		topics: make([]Topic, 0, len(topics)),
		byName: make(map[string]int, len(topics)),
	}
	for _, t := range topics {
		if t.Name == "" {
			return Catalog{}, fmt.Errorf("%w: topic without name", ErrInvalidCatalog)
		}
		if _, dup := c.byName[t.Name]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate topic %q", ErrInvalidCatalog, t.Name)
		}
		if len(t.Questions) == 0 {
			return Catalog{}, fmt.Errorf("%w: topic %q has no questions", ErrInvalidCatalog, t.Name)
		}
		qs := make([]string, len(t.Questions))
		copy(qs, t.Questions)
		c.byName[t.Name] = len(c.topics)
		c.topics = append(c.topics, Topic{Name: t.Name, Questions: qs})
	}
	return c, nil
}

// LoadCatalog reads a YAML document of the form
//
//	topics:
//	  - name: lifestyle
//	    questions: ["..."]
//
// keeping the order in which topics appear in the file.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var doc struct {
		Topics []Topic `yaml:"topics"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return NewCatalog(doc.Topics...)
}

// LoadCatalogFile loads a YAML catalog from path, or returns the default
// catalog when path is empty.
func LoadCatalogFile(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Topics returns the topics in declaration order.
func (c Catalog) Topics() []Topic {
	out := make([]Topic, len(c.topics))
	for i, t := range c.topics {
		out[i] = Topic{Name: t.Name, Questions: append([]string(nil), t.Questions...)}
	}
	return out
}

func (c Catalog) Names() []string {
	names := make([]string, len(c.topics))
	for i, t := range c.topics {
		names[i] = t.Name
	}
	return names
}

func (c Catalog) Len() int { return len(c.topics) }

// Questions returns the questions of the named topic, or nil if unknown.
func (c Catalog) Questions(topic string) []string {
	i, ok := c.byName[topic]
	if !ok {
		return nil
	}
	return append([]string(nil), c.topics[i].Questions...)
}

func (c Catalog) Has(topic string) bool {
	_, ok := c.byName[topic]
	return ok
}
