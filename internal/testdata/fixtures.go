package testdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrFixtureNotFound is returned when no file matches a fixture name.
var ErrFixtureNotFound = errors.New("fixture not found")

var fixtureExtensions = []string{".yaml", ".yml", ".json"}

// Fixtures loads hand-written data files from a directory.
type Fixtures struct {
	log logrus.FieldLogger
	dir string
}

// NewFixtures creates a loader rooted at dir, usually TestData.DataDirectory.
func NewFixtures(log logrus.FieldLogger, dir string) *Fixtures {
	return &Fixtures{
		log: log.WithField("component", "fixtures"),
		dir: dir,
	}
}

// Load decodes the first of {dir}/{name}.yaml, .yml or .json into out.
func (f *Fixtures) Load(name string, out any) error {
	path, err := f.find(name)
	if err != nil {
		return err
	}

	// #nosec G304 -- path is constrained to the fixtures directory
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture %s: %w", path, err)
	}

	unmarshal := yaml.Unmarshal
	if filepath.Ext(path) == ".json" {
		unmarshal = json.Unmarshal
	}

	if err := unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	f.log.WithField("path", path).Debug("loaded fixture")

	return nil
}

// LoadUsers is Load for a list of users.
func (f *Fixtures) LoadUsers(name string) ([]UserData, error) {
	var users []UserData
	if err := f.Load(name, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// LoadProducts is Load for a list of products.
func (f *Fixtures) LoadProducts(name string) ([]ProductData, error) {
	var products []ProductData
	if err := f.Load(name, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (f *Fixtures) find(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrFixtureNotFound, name, f.dir)
	}

	for _, ext := range fixtureExtensions {
		path := filepath.Join(f.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s in %s", ErrFixtureNotFound, name, f.dir)
}
