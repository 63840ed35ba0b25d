package harness

// SessionOption customises a session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	withoutBrowser bool
	category       string
}

// WithoutBrowser creates a session with no browser, context or page, for
// tests that only talk to the API.
func WithoutBrowser() SessionOption {
	return func(o *sessionOptions) {
		o.withoutBrowser = true
	}
}

// WithCategory overrides the category derived from the test name.
func WithCategory(category string) SessionOption {
	return func(o *sessionOptions) {
		o.category = category
	}
}
