// Package framework provides the control loop that controllers run in and
// the runner for background work around it.
package framework

import (
	"context"
	"time"
)

// Named is implemented by things with a name.
type Named interface {
	Name() string
}

// Runnable is a long running background job.
type Runnable interface {
	Run(context.Context) error
}

// Message is consumed by controllers in an iteration.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller is invoked once per iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext is the context of the current iteration.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// PriorityLevel gets the current priority level.
	PriorityLevel() int
	// Messages retrieves the messages collected when the iteration started.
	Messages() MessageStore
	// PostRun installs one-shot hooks after the controllers of the current
	// priority level. Installed from a post-run hook, they run in the next
	// iteration.
	PostRun(hooks ...Controller)

	LoopControl
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 16

// Priority levels, lower runs earlier.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvSense is for reading inputs.
	PrLvSense = PrLvHigh
	// PrLvControl is for controllers consuming commands.
	PrLvControl = PrLvNormal
	// PrLvAcuate is for driving outputs.
	PrLvAcuate = PrLvLow
	// PrLvPostProc is for publishing results.
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl exposes access to the loop, safe from any goroutine.
type LoopControl interface {
	// PreRunAt injects one-shot hooks before the controllers at the level.
	PreRunAt(priorityLevel int, controllers ...Controller)
	// PostRunAt injects one-shot hooks after the controllers at the level.
	PostRunAt(priorityLevel int, controllers ...Controller)
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration immediately.
	TriggerNext()
}

// MessageStore provides read/write access to the messages of an iteration.
type MessageStore interface {
	// ProcessMessages visits messages in order.
	ProcessMessages(MessageProcessor)

	MessageAppender
}

// MessageAppender appends messages for controllers running later in the
// same iteration.
type MessageAppender interface {
	AddMessages(msgs ...Message)
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext provides context for current message.
type MessageProcessingContext interface {
	// CurrentMessage gets the message being processed.
	CurrentMessage() Message
	// MessageTaken removes the message from the store.
	MessageTaken()
	// StopProcessing skips the remaining messages.
	StopProcessing()

	MessageAppender
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}
