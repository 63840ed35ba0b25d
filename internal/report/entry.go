package report

import (
	"html/template"
	"sync"
	"time"
)

// Status is the state of a report entry or of one of its events.
type Status string

const (
	// StatusInfo is a neutral log line.
	StatusInfo Status = "info"
	// StatusPass marks a passing test.
	StatusPass Status = "pass"
	// StatusSkip marks a skipped test.
	StatusSkip Status = "skip"
	// StatusWarning marks a recoverable problem.
	StatusWarning Status = "warning"
	// StatusError marks an error that did not decide the verdict on its own.
	StatusError Status = "error"
	// StatusFail marks a failing test.
	StatusFail Status = "fail"
)

// severity orders statuses; an entry shows its most severe event.
var severity = map[Status]int{
	StatusInfo:    0,
	StatusPass:    1,
	StatusSkip:    2,
	StatusWarning: 3,
	StatusError:   4,
	StatusFail:    5,
}

// Event is one line in an entry's log.
type Event struct {
	Time    time.Time
	Status  Status
	Message string
	Detail  string
	HTML    template.HTML
}

// Entry is the report section for one test.
type Entry struct {
	mu        sync.Mutex
	name      string
	category  string
	status    Status
	startedAt time.Time
	endedAt   time.Time
	events    []Event
	now       func() time.Time
}

func newEntry(name, category string, now func() time.Time) *Entry {
	return &Entry{
		name:      name,
		category:  category,
		status:    StatusInfo,
		startedAt: now(),
		now:       now,
	}
}

// Name returns the test name the entry was created for.
func (e *Entry) Name() string {
	return e.name
}

// Status returns the most severe status logged so far.
func (e *Entry) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

// Info logs an informational line.
func (e *Entry) Info(msg string) {
	e.add(Event{Status: StatusInfo, Message: msg})
}

// Warning logs a warning.
func (e *Entry) Warning(msg string) {
	e.add(Event{Status: StatusWarning, Message: msg})
}

// Error logs an error with its optional detail, e.g. a stack trace.
func (e *Entry) Error(msg string, err error, detail string) {
	if err != nil {
		msg += ": " + err.Error()
	}

	e.add(Event{Status: StatusError, Message: msg, Detail: detail})
}

// Pass marks the test as passed.
func (e *Entry) Pass(msg string) {
	e.finish(Event{Status: StatusPass, Message: msg})
}

// Fail marks the test as failed, keeping the failure detail.
func (e *Entry) Fail(msg, detail string) {
	e.finish(Event{Status: StatusFail, Message: msg, Detail: detail})
}

// Skip marks the test as skipped.
func (e *Entry) Skip(msg string) {
	e.finish(Event{Status: StatusSkip, Message: msg})
}

// Attach adds a pre-rendered attachment card.
func (e *Entry) Attach(fragment template.HTML) {
	e.add(Event{Status: StatusInfo, HTML: fragment})
}

func (e *Entry) finish(ev Event) {
	e.add(ev)

	e.mu.Lock()
	e.endedAt = e.now()
	e.mu.Unlock()
}

func (e *Entry) add(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Time.IsZero() {
		ev.Time = e.now()
	}

	e.events = append(e.events, ev)

	if severity[ev.Status] > severity[e.status] {
		e.status = ev.Status
	}
}

// entryView is the immutable copy handed to the template.
type entryView struct {
	Name     string
	Category string
	Status   Status
	Started  time.Time
	Duration time.Duration
	Events   []Event
}

func (e *Entry) view() entryView {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := entryView{
		Name:     e.name,
		Category: e.category,
		Status:   e.status,
		Started:  e.startedAt,
		Events:   make([]Event, len(e.events)),
	}
	copy(v.Events, e.events)

	if !e.endedAt.IsZero() {
		v.Duration = e.endedAt.Sub(e.startedAt)
	}

	return v
}
