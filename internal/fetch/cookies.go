package fetch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CookieStore keeps cookies keyed by domain, persisted as YAML. It exists for
// the bot-challenge recovery flow (pasting solved clearance cookies); the
// extraction code never touches it directly.
type CookieStore struct {
	mu   sync.Mutex
	path string
	jar  map[string]map[string]string
}

// OpenCookieStore loads the store at path, starting empty when the file does
// not exist yet.
func OpenCookieStore(path string) (*CookieStore, error) {
	s := &CookieStore{path: path, jar: map[string]map[string]string{}}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(b, &s.jar); err != nil {
		return nil, err
	}
	if s.jar == nil {
		s.jar = map[string]map[string]string{}
	}

	return s, nil
}

func (s *CookieStore) Set(domain, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jar[domain] == nil {
		s.jar[domain] = map[string]string{}
	}
	s.jar[domain][name] = value

	return s.save()
}

// Get returns a copy of the cookies stored for domain.
func (s *CookieStore) Get(domain string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]string{}
	for k, v := range s.jar[domain] {
		out[k] = v
	}

	return out
}

// Delete removes one cookie, or every cookie for the domain when name is empty.
func (s *CookieStore) Delete(domain, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		delete(s.jar, domain)
	} else if s.jar[domain] != nil {
		delete(s.jar[domain], name)
		if len(s.jar[domain]) == 0 {
			delete(s.jar, domain)
		}
	}

	return s.save()
}

// Header renders the stored cookies for domain as a Cookie header value.
func (s *CookieStore) Header(domain string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cookies := s.jar[domain]
	if len(cookies) == 0 {
		return ""
	}

	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+cookies[name])
	}

	return strings.Join(parts, "; ")
}

func (s *CookieStore) save() error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(s.jar)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0600)
}
