package generator

import (
	"context"
	"strings"

	"github.com/knowgen/knowgen/pkg/engine"
)

// CompletionMarker is the fixed heading every detail response must end
// with. Its absence means the model stopped early and a continuation
// exchange is needed.
const CompletionMarker = "## Conclusion"

// continueInstruction is appended as the user turn of each continuation
// exchange.
const continueInstruction = "Please continue from where you left off."

// MaxContinuationAttempts bounds the detail-phase continuation loop.
const MaxContinuationAttempts = 3

// InvokeFunc performs one backend exchange and returns the cleaned
// response text.
type InvokeFunc func(ctx context.Context, history []engine.Message) (string, error)

// Controller runs the bounded continuation state machine for one detail
// response. Title generation never uses it; titles are single-shot.
type Controller struct {
	Marker        string
	MaxIterations int
}

// NewController returns a Controller with the standard marker and bound.
func NewController() *Controller {
	return &Controller{Marker: CompletionMarker, MaxIterations: MaxContinuationAttempts}
}

type controllerState int

const (
	stateAttempt controllerState = iota
	stateCheckMarker
	stateDone
	stateDoneIncomplete
)

// Run drives the exchange until the completion marker appears or the
// attempt bound is reached. It returns the concatenation of every
// attempt's text and whether the marker was found. Attempt exhaustion is
// not an error; a failed backend call is, and the text gathered before
// the failure is still returned.
func (c *Controller) Run(ctx context.Context, prompt string, invoke InvokeFunc) (string, bool, error) {
	history := []engine.Message{{Role: engine.RoleUser, Content: prompt}}

	var parts strings.Builder
	var lastText string
	attempts := 0
	state := stateAttempt

	for {
		switch state {
		case stateAttempt:
			text, err := invoke(ctx, history)
			if err != nil {
				return parts.String(), false, err
			}
			parts.WriteString(text)
			lastText = text
			attempts++
			state = stateCheckMarker

		case stateCheckMarker:
			switch {
			case strings.Contains(lastText, c.Marker):
				state = stateDone
			case attempts >= c.MaxIterations:
				state = stateDoneIncomplete
			default:
				history = append(history,
					engine.Message{Role: engine.RoleAssistant, Content: lastText},
					engine.Message{Role: engine.RoleUser, Content: continueInstruction},
				)
				state = stateAttempt
			}

		case stateDone:
			return parts.String(), true, nil

		case stateDoneIncomplete:
			return parts.String(), false, nil
		}
	}
}
