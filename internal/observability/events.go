package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	EventTypeDomain = "domain_events"
	EventTypeWS     = "ws_events"
)

// Domain event names and the routing keys they are published under.
const (
	EventReactionRecorded = "reaction.recorded"
	EventMatchCreated     = "match.created"
	EventChatRoomCreated  = "chat_room.created"

	RoutingKeyReactions = "reactions.recorded"
	RoutingKeyMatches   = "matches.created"
)

type EventEnvelope struct {
	EventType  string      `json:"event_type"`
	EventName  string      `json:"event_name"`
	OccurredAt string      `json:"occurred_at,omitempty"`
	Payload    interface{} `json:"payload"`
}

// DomainEvent stamps a domain envelope with the current time.
func DomainEvent(name string, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventType:  EventTypeDomain,
		EventName:  name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:    payload,
	}
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// HeadersFromContext builds transport headers from the request id and span carried by ctx.
func HeadersFromContext(ctx context.Context) map[string]string {
	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	return BuildHeaders(RequestIDFromContext(ctx), traceID)
}
