// Package ui provides element interaction, navigation and wait helpers on
// top of a browser page, plus the building blocks for page objects.
package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethpandaops/e2e-harness/internal/config"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Page is the subset of playwright.Page the helpers drive.
type Page interface {
	Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator
	WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
	URL() string
	WaitForURL(url interface{}, options ...playwright.PageWaitForURLOptions) error
}

// State is the element state WaitFor waits for.
type State string

const (
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
	StateAttached State = "attached"
	StateDetached State = "detached"
)

func (s State) selectorState() *playwright.WaitForSelectorState {
	switch s {
	case StateHidden:
		return playwright.WaitForSelectorStateHidden
	case StateAttached:
		return playwright.WaitForSelectorStateAttached
	case StateDetached:
		return playwright.WaitForSelectorStateDetached
	default:
		return playwright.WaitForSelectorStateVisible
	}
}

// Interactor performs element actions, optionally scoped under a base
// selector. Every action first waits for its element to be visible.
type Interactor struct {
	log     logrus.FieldLogger
	page    Page
	base    string
	timeout time.Duration
}

// NewInteractor creates an unscoped interactor using Timeouts.Element.
func NewInteractor(log logrus.FieldLogger, page Page, settings *config.TestSettings) *Interactor {
	return &Interactor{
		log:     log.WithField("component", "ui"),
		page:    page,
		timeout: config.Duration(settings.Timeouts.Element),
	}
}

// Scoped returns an interactor whose selectors are nested under base.
func (i *Interactor) Scoped(base string) *Interactor {
	scoped := *i
	scoped.base = i.Selector(base)

	return &scoped
}

// Page returns the page being driven.
func (i *Interactor) Page() Page {
	return i.page
}

// Selector prefixes selector with the base selector, if any.
func (i *Interactor) Selector(selector string) string {
	if i.base == "" {
		return selector
	}

	return i.base + " " + selector
}

// WaitFor waits until the scoped selector reaches state.
func (i *Interactor) WaitFor(selector string, state State) error {
	return i.waitForScoped(i.Selector(selector), state)
}

func (i *Interactor) waitForScoped(scoped string, state State) error {
	i.log.WithFields(logrus.Fields{"selector": scoped, "state": state}).Debug("waiting for element")

	err := i.page.Locator(scoped).WaitFor(playwright.LocatorWaitForOptions{
		State:   state.selectorState(),
		Timeout: playwright.Float(float64(i.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("waiting for %s to be %s: %w", scoped, state, err)
	}

	return nil
}

// Element waits for selector to be visible and returns its locator.
func (i *Interactor) Element(selector string) (playwright.Locator, error) {
	scoped := i.Selector(selector)
	if err := i.waitForScoped(scoped, StateVisible); err != nil {
		return nil, err
	}

	return i.page.Locator(scoped), nil
}

func (i *Interactor) Click(selector string) error {
	el, err := i.Element(selector)
	if err != nil {
		return err
	}

	i.log.WithField("selector", i.Selector(selector)).Debug("clicking element")

	if err := el.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", i.Selector(selector), err)
	}

	return nil
}

// Fill replaces the value of an input.
func (i *Interactor) Fill(selector, text string) error {
	el, err := i.Element(selector)
	if err != nil {
		return err
	}

	i.log.WithField("selector", i.Selector(selector)).Debug("typing text into element")

	if err := el.Fill(text); err != nil {
		return fmt.Errorf("filling %s: %w", i.Selector(selector), err)
	}

	return nil
}

// Text returns the element's text content.
func (i *Interactor) Text(selector string) (string, error) {
	el, err := i.Element(selector)
	if err != nil {
		return "", err
	}

	text, err := el.TextContent()
	if err != nil {
		return "", fmt.Errorf("reading text of %s: %w", i.Selector(selector), err)
	}

	return text, nil
}

// IsVisible reports whether the element becomes visible within the element
// timeout. Only a timeout yields false; other failures are returned.
func (i *Interactor) IsVisible(selector string) (bool, error) {
	return i.probe(i.Selector(selector), StateVisible)
}

// IsPresent is IsVisible for attachment to the DOM.
func (i *Interactor) IsPresent(selector string) (bool, error) {
	return i.probe(i.Selector(selector), StateAttached)
}

func (i *Interactor) probe(scoped string, state State) (bool, error) {
	err := i.waitForScoped(scoped, state)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}

	return false, err
}

// SelectOption picks the option with value in a dropdown.
func (i *Interactor) SelectOption(selector, value string) error {
	el, err := i.Element(selector)
	if err != nil {
		return err
	}

	i.log.WithField("selector", i.Selector(selector)).Debug("selecting option in dropdown")

	if _, err := el.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
		return fmt.Errorf("selecting %q in %s: %w", value, i.Selector(selector), err)
	}

	return nil
}

func (i *Interactor) Hover(selector string) error {
	el, err := i.Element(selector)
	if err != nil {
		return err
	}

	if err := el.Hover(); err != nil {
		return fmt.Errorf("hovering %s: %w", i.Selector(selector), err)
	}

	return nil
}

func (i *Interactor) ScrollIntoView(selector string) error {
	el, err := i.Element(selector)
	if err != nil {
		return err
	}

	if err := el.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("scrolling %s into view: %w", i.Selector(selector), err)
	}

	return nil
}

// DragAndDrop drags source onto target.
func (i *Interactor) DragAndDrop(source, target string) error {
	src, err := i.Element(source)
	if err != nil {
		return err
	}

	dst, err := i.Element(target)
	if err != nil {
		return err
	}

	i.log.WithFields(logrus.Fields{
		"source": i.Selector(source),
		"target": i.Selector(target),
	}).Debug("performing drag and drop")

	if err := src.DragTo(dst); err != nil {
		return fmt.Errorf("dragging %s to %s: %w", i.Selector(source), i.Selector(target), err)
	}

	return nil
}

// Attribute returns the attribute value, or "" when it is absent.
func (i *Interactor) Attribute(selector, name string) (string, error) {
	el, err := i.Element(selector)
	if err != nil {
		return "", err
	}

	value, err := el.GetAttribute(name)
	if err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, i.Selector(selector), err)
	}

	return value, nil
}

// HasClass reports whether className is one of the element's classes.
func (i *Interactor) HasClass(selector, className string) (bool, error) {
	classes, err := i.Attribute(selector, "class")
	if err != nil {
		return false, err
	}

	return slices.Contains(strings.Fields(classes), className), nil
}

func (i *Interactor) WaitForNetworkIdle() error {
	i.log.Debug("waiting for network idle")

	return i.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
}

func (i *Interactor) WaitForDOMContentLoaded() error {
	i.log.Debug("waiting for DOM content loaded")

	return i.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
}
