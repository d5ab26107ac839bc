package main

import (
	"context"
	"fmt"

	"github.com/conduitrun/conduit/internal/gatewaycore"
	"github.com/conduitrun/conduit/internal/outreach"
	"github.com/conduitrun/conduit/internal/routerpool"
	"github.com/conduitrun/conduit/internal/timer"
)

// routerAdapter exposes a routerpool.Router as a gatewaycore.MessageRouter.
// The two Route signatures differ only in how the message is carried (a
// RoutableMessage struct vs three positional strings).
type routerAdapter struct {
	router *routerpool.Router
}

func (a routerAdapter) Route(channel, senderID, text string) string {
	return a.router.Route(routerpool.RoutableMessage{Channel: channel, SenderID: senderID, Text: &text})
}

// poolAdapter exposes a routerpool.Pool as a gatewaycore.AgentPool. The pool
// stores `any` so every construction site shares one cache implementation;
// the gateway only ever hands it agents built by agentBuilder, so the type
// assertion cannot fail in practice.
type poolAdapter struct {
	pool *routerpool.Pool
}

func (a poolAdapter) Get(name, sender string) (gatewaycore.Agent, error) {
	instance, err := a.pool.Get(name, sender)
	if err != nil {
		return nil, err
	}
	agent, ok := instance.(gatewaycore.Agent)
	if !ok {
		return nil, fmt.Errorf("pooled instance for %q is not an agent", name)
	}
	return agent, nil
}

// delivererAdapter exposes a gatewaycore.Manager as a timer.Deliverer,
// dropping the channel-metadata argument the manager's SendProactive signature
// carries but scheduled jobs never need.
type delivererAdapter struct {
	manager *gatewaycore.Manager
}

func (a delivererAdapter) SendProactive(ctx context.Context, channel, recipient, result string) error {
	return a.manager.SendProactive(ctx, channel, recipient, result, nil)
}

// senderAdapter exposes a gatewaycore.Manager, pinned to a single
// configured delivery channel, as an outreach.Sender. Composed emails
// always go out over the one channel the outreach config names.
type senderAdapter struct {
	manager *gatewaycore.Manager
	channel string
}

func (a senderAdapter) Send(ctx context.Context, recipientID, text string, metadata map[string]string) (bool, string) {
	if a.channel == "" {
		return false, "outreach delivery channel is not configured"
	}
	if err := a.manager.SendProactive(ctx, a.channel, recipientID, text, metadata); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// jobSchedulerAdapter exposes a timer.Scheduler as an outreach.JobScheduler.
// ExistingQueries has no direct counterpart on the scheduler, so it is
// derived from a ListJobs snapshot on every call.
type jobSchedulerAdapter struct {
	scheduler *timer.Scheduler
}

func (a jobSchedulerAdapter) AddJob(schedule, query, channel, recipient string) (string, error) {
	job, err := a.scheduler.AddJob(schedule, query, channel, recipient)
	if err != nil {
		return "", err
	}
	return job.ID, nil
}

func (a jobSchedulerAdapter) RemoveJob(id string) bool {
	return a.scheduler.RemoveJob(id)
}

func (a jobSchedulerAdapter) ExistingQueries() map[string]bool {
	queries := make(map[string]bool)
	for _, job := range a.scheduler.ListJobs() {
		queries[job.Query] = true
	}
	return queries
}

var (
	_ gatewaycore.MessageRouter = routerAdapter{}
	_ gatewaycore.AgentPool     = poolAdapter{}
	_ timer.Deliverer           = delivererAdapter{}
	_ outreach.Sender           = senderAdapter{}
	_ outreach.JobScheduler     = jobSchedulerAdapter{}
)
