package locale

import (
	"errors"
	"sync"

	"golang.org/x/text/language"
)

// supported lists the UI languages in preference order; the first entry is
// the fallback.
var supported = []language.Tag{
	language.English,
	language.French,
	language.MustParse("rw"),
}

var matcher = language.NewMatcher(supported)

// ErrUnsupported indicates a language outside the supported set.
var ErrUnsupported = errors.New("locale: unsupported language")

// Subscriber receives the new language tag after each change.
type Subscriber func(tag string)

// Store holds the current UI language and notifies explicit subscribers on
// change. Components register themselves; nothing observes the store
// implicitly through shared globals.
type Store struct {
	mu          sync.RWMutex
	current     language.Tag
	subscribers map[int]Subscriber
	nextID      int
}

// NewStore builds a Store starting at the given language, falling back to
// English when the value is absent or unsupported.
func NewStore(initial string) *Store {
	s := &Store{
		current:     supported[0],
		subscribers: make(map[int]Subscriber),
	}
	if tag, err := Match(initial); err == nil {
		s.current = tag
	}
	return s
}

// Match resolves an arbitrary language string against the supported set.
func Match(value string) (language.Tag, error) {
	if value == "" {
		return language.Tag{}, ErrUnsupported
	}
	desired, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, ErrUnsupported
	}
	_, index, confidence := matcher.Match(desired)
	if confidence == language.No {
		return language.Tag{}, ErrUnsupported
	}
	return supported[index], nil
}

// Supported returns the supported language tags as strings.
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		out[i] = tag.String()
	}
	return out
}

// Get returns the current language tag.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.String()
}

// Set switches the current language and notifies every subscriber. Setting
// the language it already holds notifies nobody.
func (s *Store) Set(value string) error {
	tag, err := Match(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if tag == s.current {
		s.mu.Unlock()
		return nil
	}
	s.current = tag
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(tag.String())
	}
	return nil
}

// Subscribe registers a change listener and returns an unsubscribe func.
func (s *Store) Subscribe(sub Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = sub
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
