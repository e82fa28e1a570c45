package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func (m *publisherMock) Close() error {
	return m.Called().Error(0)
}

func TestEmitActionBuildsEnvelope(t *testing.T) {
	pub := new(publisherMock)
	emitter := NewAuditEmitter(pub, "audit.jurny", "jurny-api", "test", nil)
	user := "7f0c6a1e-8f7b-4a57-9a5e-2f7e3c2d1b00"

	pub.On("Publish", mock.Anything, "audit.jurny", mock.MatchedBy(func(env AuditEnvelope) bool {
		return env.EventType == "audit_log" &&
			env.Service == "jurny-api" &&
			env.RequestID == "req-1" &&
			env.UserID != nil && *env.UserID == user &&
			env.Payload.Action == "place.deleted" &&
			env.Payload.Fields["place_id"] == "p1"
	})).Return(nil).Once()

	emitter.EmitAction(context.Background(), "INFO", "place.deleted", "place deleted", "req-1", &user, map[string]string{"place_id": "p1"})
	pub.AssertExpectations(t)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := new(publisherMock)
	pub.On("Publish", mock.Anything, "audit", mock.Anything).Return(assert.AnError).Once()

	NewAuditEmitter(pub, "audit", "svc", "env", nil).Emit(context.Background(), "WARN", "x", "", nil)
	pub.AssertExpectations(t)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "INFO", "noop", "", nil)
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "jurny-api", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
