package ui

import (
	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/sirupsen/logrus"
)

// Component is a page fragment whose selectors resolve under a root element.
// Page objects embed it.
type Component struct {
	*Interactor

	root string
}

// NewComponent creates a component rooted at root.
func NewComponent(log logrus.FieldLogger, page Page, settings *config.TestSettings, root string) *Component {
	return &Component{
		Interactor: NewInteractor(log, page, settings).Scoped(root),
		root:       root,
	}
}

// Root returns the root selector.
func (c *Component) Root() string {
	return c.root
}

// IsVisible reports whether the root element becomes visible.
func (c *Component) IsVisible() (bool, error) {
	return c.probe(c.base, StateVisible)
}

// WaitUntilVisible waits for the root element.
func (c *Component) WaitUntilVisible() error {
	c.log.WithField("selector", c.base).Debug("waiting for component to be visible")

	return c.waitForScoped(c.base, StateVisible)
}
