package service

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// DefaultAutosaveSchedule saves dirty documents every 30 seconds.
const DefaultAutosaveSchedule = "@every 30s"

// Autosaver periodically saves dirty open documents.
type Autosaver struct {
	docs     *DocumentService
	schedule string
	emitter  EventEmitter
	cron     *cron.Cron
}

// NewAutosaver creates an autosaver. An empty schedule disables it.
func NewAutosaver(docs *DocumentService, schedule string, emitter EventEmitter) *Autosaver {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &Autosaver{docs: docs, schedule: schedule, emitter: emitter}
}

// Start schedules the autosave job. It fails on an invalid cron expression.
func (a *Autosaver) Start(ctx context.Context) error {
	if a.schedule == "" {
		log.Printf("[AUTOSAVE] disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(a.schedule, func() { a.Run(ctx) }); err != nil {
		return fmt.Errorf("autosave schedule %q: %w", a.schedule, err)
	}
	c.Start()
	a.cron = c
	log.Printf("[AUTOSAVE] scheduled %s", a.schedule)
	return nil
}

// Run saves dirty documents once.
func (a *Autosaver) Run(ctx context.Context) int {
	n := a.docs.SaveDirty(ctx)
	if n > 0 {
		a.emitter.Emit(ctx, EventAutosave, n)
	}
	return n
}

// Stop halts the schedule and waits for a running job.
func (a *Autosaver) Stop() {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	a.cron = nil
}
