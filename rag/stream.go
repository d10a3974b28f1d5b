package rag

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/docuchat/core"
)

// DefaultStreamTimeout bounds one streaming generation call.
const DefaultStreamTimeout = 60 * time.Second

// Unit is one element of a streamed answer. Consumers read Content
// deltas until the single unit with Final=true, which always arrives —
// on normal completion, on timeout, and on mid-stream errors alike —
// and always carries an empty Content.
type Unit struct {
	Content string
	Context string
	Final   bool
}

// QueryStream runs retrieval and context assembly synchronously, then
// streams generation on the returned channel. The channel is closed
// after the final unit. Tokens delivered before a timeout or stream
// error are not discarded; the stream just ends early with its final
// unit.
//
// A retrieval failure is returned directly: nothing has been streamed
// yet, so the caller can still fail the whole call.
func (e *Engine) QueryStream(ctx context.Context, resourceID, question string, history []core.Message) (<-chan Unit, error) {
	req, docContext, err := e.prepare(ctx, resourceID, question, history)
	if err != nil {
		return nil, err
	}

	units := make(chan Unit, 16)

	go func() {
		streamCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		defer func() {
			// Exactly one final unit, whatever happened above.
			select {
			case units <- Unit{Context: docContext, Final: true}:
			case <-ctx.Done():
			}
			close(units)
		}()

		_, err := e.generator.GenerateStream(streamCtx, req, func(cbCtx context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			select {
			case units <- Unit{Content: string(chunk), Context: docContext}:
				return nil
			case <-streamCtx.Done():
				return streamCtx.Err()
			}
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				e.logger.Error("streaming timed out", "resourceId", resourceID,
					"kind", core.KindStreamTimeout, "timeout", e.timeout)
			} else {
				e.logger.Error("streaming failed", "resourceId", resourceID,
					"kind", core.KindGeneration, "err", err)
			}
		}
	}()

	return units, nil
}
