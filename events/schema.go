package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Kind tags one of the closed set of player event shapes
type Kind string

// Event kinds emitted by the embedded player
const (
	KindVideoPlay             Kind = "video:play"
	KindVideoPaused           Kind = "video:pause"
	KindVideoEnded            Kind = "video:ended"
	KindTimeUpdated           Kind = "video:time-updated"
	KindLivestreamEnded       Kind = "video:livestream-ended"
	KindWebRTCLivestreamEnded Kind = "webrtc:livestream-ended"
)

// RecordedKinds is the event set a recorded-video subscription accepts
var RecordedKinds = []Kind{KindVideoPlay, KindVideoPaused, KindVideoEnded, KindTimeUpdated}

// LiveKinds is the event set a livestream subscription accepts. The
// webrtc variant is validated but has no dispatch target.
var LiveKinds = []Kind{KindVideoPlay, KindVideoPaused, KindVideoEnded, KindTimeUpdated,
	KindLivestreamEnded, KindWebRTCLivestreamEnded}

// Event is one validated player event. Only the field matching the kind is
// meaningful; the rest stay zero.
type Event struct {
	Kind                 Kind
	DurationAtInSeconds  float64
	CurrentTimeInSeconds float64
}

// eventSchemas validate inbound payloads, one schema per event kind
var eventSchemas = buildEventSchemas()

func buildEventSchemas() map[Kind]*openapi3.Schema {
	numberFields := map[Kind]string{
		KindVideoPlay:   "durationAtInSeconds",
		KindVideoPaused: "durationAtInSeconds",
		KindTimeUpdated: "currentTimeInSeconds",
	}

	schemas := make(map[Kind]*openapi3.Schema)
	for _, kind := range LiveKinds {
		schema := openapi3.NewObjectSchema().
			WithProperty("type", openapi3.NewStringSchema().WithEnum(string(kind)))
		schema.Required = []string{"type"}

		if field, ok := numberFields[kind]; ok {
			schema = schema.WithProperty(field, openapi3.NewFloat64Schema())
			schema.Required = append(schema.Required, field)
		}

		schemas[kind] = schema
	}
	return schemas
}

// ParseEvent validates a raw payload against the allowed event shapes.
// Failure is the expected outcome for channel noise, so it comes back as a
// result value rather than unwinding: callers discard the message on Err.
func ParseEvent(data []byte, allowed []Kind) mo.Result[Event] {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return mo.Err[Event](fmt.Errorf("payload is not a JSON object: %w", err))
	}

	tag, ok := raw["type"].(string)
	if !ok {
		return mo.Err[Event](errors.New("payload has no type tag"))
	}

	kind := Kind(tag)
	if !lo.Contains(allowed, kind) {
		return mo.Err[Event](fmt.Errorf("unrecognized event type %q", tag))
	}

	if err := eventSchemas[kind].VisitJSON(raw); err != nil {
		return mo.Err[Event](fmt.Errorf("payload failed schema validation: %w", err))
	}

	event := Event{Kind: kind}
	switch kind {
	case KindVideoPlay, KindVideoPaused:
		event.DurationAtInSeconds = raw["durationAtInSeconds"].(float64)
	case KindTimeUpdated:
		event.CurrentTimeInSeconds = raw["currentTimeInSeconds"].(float64)
	}

	return mo.Ok(event)
}
