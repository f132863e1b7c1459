// Package testutil provides in-memory fakes for the osdsl interfaces, shared
// by the package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/WalkerWang731/opensearch-dsl-go/osdsl"
)

// RecordedCall captures one UpdateByQuery invocation on a FakeConnection.
type RecordedCall struct {
	Indices []string
	Body    map[string]any
	Params  map[string]any
}

// FakeConnection implements osdsl.Connection in memory, replaying a canned
// reply or error and recording every call.
type FakeConnection struct {
	mu    sync.Mutex
	Reply map[string]any
	Err   error
	Calls []RecordedCall
}

func (f *FakeConnection) UpdateByQuery(
	_ context.Context,
	indices []string,
	body map[string]any,
	params map[string]any,
) (map[string]any, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, RecordedCall{Indices: indices, Body: body, Params: params})

	if f.Err != nil {
		return nil, f.Err
	}

	return f.Reply, nil
}

var _ osdsl.Connection = (*FakeConnection)(nil)

// LogEntry captures one logger invocation.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// FakeLogger implements osdsl.Logger by recording entries.
type FakeLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func (f *FakeLogger) Debug(msg string, args ...any) { f.record("debug", msg, args) }
func (f *FakeLogger) Info(msg string, args ...any)  { f.record("info", msg, args) }
func (f *FakeLogger) Warn(msg string, args ...any)  { f.record("warn", msg, args) }
func (f *FakeLogger) Error(msg string, args ...any) { f.record("error", msg, args) }

func (f *FakeLogger) record(level string, msg string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Entries = append(f.Entries, LogEntry{Level: level, Message: msg, Args: args})
}

// MessagesAt returns the messages recorded at the given level.
func (f *FakeLogger) MessagesAt(level string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var messages []string
	for _, entry := range f.Entries {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}

	return messages
}

var _ osdsl.Logger = (*FakeLogger)(nil)

// FakeContextualLogger implements osdsl.ContextualLogger by recording entries.
type FakeContextualLogger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func (f *FakeContextualLogger) DebugContext(_ context.Context, msg string, args ...any) {
	f.record("debug", msg, args)
}

func (f *FakeContextualLogger) InfoContext(_ context.Context, msg string, args ...any) {
	f.record("info", msg, args)
}

func (f *FakeContextualLogger) WarnContext(_ context.Context, msg string, args ...any) {
	f.record("warn", msg, args)
}

func (f *FakeContextualLogger) ErrorContext(_ context.Context, msg string, args ...any) {
	f.record("error", msg, args)
}

func (f *FakeContextualLogger) record(level string, msg string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Entries = append(f.Entries, LogEntry{Level: level, Message: msg, Args: args})
}

// MessagesAt returns the messages recorded at the given level.
func (f *FakeContextualLogger) MessagesAt(level string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var messages []string
	for _, entry := range f.Entries {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}

	return messages
}

var _ osdsl.ContextualLogger = (*FakeContextualLogger)(nil)

// FakeMetricsCollector implements osdsl.MetricsCollector by counting
// invocations per metric name.
type FakeMetricsCollector struct {
	mu        sync.Mutex
	Durations map[string]int
	Counters  map[string]int
	Values    map[string]int
}

func (f *FakeMetricsCollector) RecordDuration(metric string, _ time.Duration, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Durations == nil {
		f.Durations = make(map[string]int)
	}
	f.Durations[metric]++
}

func (f *FakeMetricsCollector) IncrementCounter(metric string, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Counters == nil {
		f.Counters = make(map[string]int)
	}
	f.Counters[metric]++
}

func (f *FakeMetricsCollector) RecordValue(metric string, _ float64, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Values == nil {
		f.Values = make(map[string]int)
	}
	f.Values[metric]++
}

var _ osdsl.MetricsCollector = (*FakeMetricsCollector)(nil)

// FinishedSpan captures one completed span on a FakeTracingCollector.
type FinishedSpan struct {
	Name   string
	Status string
}

// FakeTracingCollector implements osdsl.TracingCollector by recording span
// lifecycles.
type FakeTracingCollector struct {
	mu       sync.Mutex
	Started  []string
	Finished []FinishedSpan
}

func (f *FakeTracingCollector) StartSpan(ctx context.Context, name string, _ map[string]string) (context.Context, osdsl.SpanContext) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Started = append(f.Started, name)

	return ctx, &fakeSpanContext{name: name}
}

func (f *FakeTracingCollector) FinishSpan(spanCtx osdsl.SpanContext, status string, _ map[string]string) {
	span, ok := spanCtx.(*fakeSpanContext)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Finished = append(f.Finished, FinishedSpan{Name: span.name, Status: status})
}

var _ osdsl.TracingCollector = (*FakeTracingCollector)(nil)

type fakeSpanContext struct {
	name string
}

func (s *fakeSpanContext) SetStatus(string) {}

func (s *fakeSpanContext) AddAttribute(string, string) {}
