// Package generator orchestrates the two-phase generation flow: one
// title-planning exchange, then one detail exchange per planned section.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowgen/knowgen/pkg/engine"
	"github.com/knowgen/knowgen/pkg/parse"
	"github.com/knowgen/knowgen/pkg/prompt"
	"github.com/knowgen/knowgen/pkg/stream"
	"github.com/knowgen/knowgen/pkg/tokens"
)

// Transient backend failures during detail generation are retried a few
// times before giving up on the run.
const (
	transientAttempts = 3
	transientDelay    = 2 * time.Second
)

// EventKind classifies a display event.
type EventKind string

const (
	EventContent   EventKind = "content"   // response text as it arrives
	EventReasoning EventKind = "reasoning" // reasoning text, shown dimmed
	EventStatus    EventKind = "status"    // phase transitions
)

// Sink receives display events as generation progresses. Optional.
type Sink interface {
	Event(kind EventKind, text string)
}

// Observer is notified after each section completes. Optional.
type Observer interface {
	Update(current int, shortTitle string)
}

// Request describes one generation run. Immutable for the duration of
// the Generate call.
type Request struct {
	Topic          string
	Quantity       int
	Category       string
	ExpertiseLevel string
	ContextNote    string
}

// Section is one generated section in input order; Index is 1-based.
type Section struct {
	Index int
	Title parse.TitleEntry
	Body  string
}

// Result is the output of one Generate call.
type Result struct {
	Sections []Section
	Overview string
	Usage    tokens.Usage
	Cost     float64
}

// Params wires a Generator. Engine, Prompts and Logger are required.
type Params struct {
	Engine   engine.Engine
	Prompts  *prompt.Builder
	Logger   *logrus.Logger
	Invoke   engine.Options
	Rates    tokens.Rates
	Sink     Sink
	Observer Observer
}

// Generator drives the backend through the title and detail phases and
// accounts token usage across both.
type Generator struct {
	engine     engine.Engine
	prompts    *prompt.Builder
	logger     *logrus.Logger
	invoke     engine.Options
	rates      tokens.Rates
	sink       Sink
	observer   Observer
	accountant *tokens.Accountant
	control    *Controller

	sleep func(time.Duration)
}

func New(p Params) *Generator {
	return &Generator{
		engine:     p.Engine,
		prompts:    p.Prompts,
		logger:     p.Logger,
		invoke:     p.Invoke,
		rates:      p.Rates,
		sink:       p.Sink,
		observer:   p.Observer,
		accountant: tokens.NewAccountant(),
		control:    NewController(),
		sleep:      time.Sleep,
	}
}

// Generate runs both phases and returns the ordered sections plus
// overview. Cancellation during the title phase discards all partial
// output and returns an empty result; cancellation during the detail
// phase propagates to the caller.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	g.accountant.Reset()

	sections, overview, err := g.generateTitles(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			g.logger.Warn("Interrupted during title generation, discarding partial output")
			return &Result{}, nil
		}
		return nil, err
	}

	for i := range sections {
		body, err := g.generateDetail(ctx, req, &sections[i], len(sections))
		if err != nil {
			return nil, err
		}
		sections[i].Body = body
		if g.observer != nil {
			g.observer.Update(sections[i].Index, sections[i].Title.Short)
		}
	}

	return &Result{
		Sections: sections,
		Overview: overview,
		Usage:    g.accountant.Usage(),
		Cost:     g.accountant.Cost(g.rates),
	}, nil
}

// Usage returns the counters of the most recent Generate call.
func (g *Generator) Usage() tokens.Usage {
	return g.accountant.Usage()
}

func (g *Generator) generateTitles(ctx context.Context, req Request) ([]Section, string, error) {
	g.status("Generating section titles...")
	g.logger.Debug("Building titles prompt")

	titlesPrompt := g.prompts.Titles(prompt.TitleVars{
		Topic:          req.Topic,
		Quantity:       req.Quantity,
		Category:       req.Category,
		ExpertiseLevel: req.ExpertiseLevel,
		ContextNote:    req.ContextNote,
	})

	clean, err := g.invokeCall(ctx, []engine.Message{{Role: engine.RoleUser, Content: titlesPrompt}})
	if err != nil {
		return nil, "", fmt.Errorf("title generation failed: %w", err)
	}

	entries, err := parse.Titles(clean)
	if err != nil {
		return nil, "", err
	}

	overview, repaired, missing := parse.Overview(clean)
	if repaired {
		g.logger.Warn("Overview block was unterminated, repaired with a synthetic close tag")
	}
	if missing {
		g.logger.Warn("TITLE_OVERVIEW not found in model output")
	}

	sections := make([]Section, len(entries))
	for i, entry := range entries {
		sections[i] = Section{Index: i + 1, Title: entry}
	}
	g.logger.Infof("Planned %d sections", len(sections))
	return sections, overview, nil
}

func (g *Generator) generateDetail(ctx context.Context, req Request, section *Section, total int) (string, error) {
	g.status(fmt.Sprintf("Processing section %d of %d: %s", section.Index, total, section.Title.Short))

	detailPrompt := g.prompts.Content(prompt.ContentVars{
		Topic:             req.Topic,
		ChapterTitle:      section.Title.Full,
		ChapterShortTitle: section.Title.Short,
		ChapterIndex:      section.Index,
		Quantity:          total,
		Category:          req.Category,
		ExpertiseLevel:    req.ExpertiseLevel,
		ContextNote:       req.ContextNote,
	})

	var body string
	err := g.withRetry(ctx, func() error {
		text, complete, err := g.control.Run(ctx, detailPrompt, g.invokeCall)
		if err != nil {
			return err
		}
		if !complete {
			g.logger.Warnf("Section %d never produced the completion marker, keeping partial content", section.Index)
		}
		body = text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate section %d: %w", section.Index, err)
	}
	return body, nil
}

// invokeCall performs one backend exchange: invoke, drain, account. A
// rejected optional capability triggers exactly one retry with that
// capability disabled; the fallback sticks for the rest of the run.
func (g *Generator) invokeCall(ctx context.Context, history []engine.Message) (string, error) {
	clean, err := g.invokeOnce(ctx, history, g.invoke)
	var capErr *engine.CapabilityError
	if errors.As(err, &capErr) && capErr.Feature == engine.FeatureReasoning && g.invoke.Think {
		g.logger.Warnf("Model does not support the reasoning pass, retrying without it")
		g.invoke.Think = false
		return g.invokeOnce(ctx, history, g.invoke)
	}
	return clean, err
}

func (g *Generator) invokeOnce(ctx context.Context, history []engine.Message, opts engine.Options) (string, error) {
	s, err := g.engine.Invoke(ctx, history, opts)
	if err != nil {
		return "", err
	}

	acc := stream.NewAccumulator()
	drainErr := engine.Drain(s, acc, g.emitFragment)

	// Account even interrupted responses: the backend computed them.
	if usage, ok := s.Usage(); ok {
		g.accountant.AddExact(usage.Input, usage.Output)
	} else {
		g.accountant.AddEstimate(acc.Raw())
	}

	if drainErr != nil {
		return "", drainErr
	}
	return acc.Clean(), nil
}

// withRetry reruns fn on transient failure, up to transientAttempts with
// a fixed delay between tries. Cancellation is never retried.
func (g *Generator) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= transientAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if attempt < transientAttempts {
			g.logger.Warnf("Error occurred, retrying... (Attempt %d/%d): %v", attempt, transientAttempts, lastErr)
			g.sleep(transientDelay)
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", transientAttempts, lastErr)
}

func (g *Generator) emitFragment(f stream.Fragment) {
	if g.sink == nil {
		return
	}
	kind := EventContent
	if f.Reasoning {
		kind = EventReasoning
	}
	g.sink.Event(kind, f.Text)
}

func (g *Generator) status(msg string) {
	if g.sink != nil {
		g.sink.Event(EventStatus, msg)
	}
}
