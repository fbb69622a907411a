package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/vehicalc/internal/config"
	"github.com/jgoulah/vehicalc/pkg/models"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type message struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	messages     []message
	err          error
	connected    bool
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.messages = append(c.messages, message{topic: topic, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublishEvent(t *testing.T) {
	fc := &fakeClient{}
	p := newWithClient(fc, "vehicalc/", zerolog.Nop())

	ev := models.EmissionEvent{
		ID: "ev-1", Username: "alice", Vehicle: "car", Distance: 50,
		Month: models.Feb, Strategy: "distance", KgCO2: 10.5,
	}
	require.NoError(t, p.PublishEvent(ev))

	require.Len(t, fc.messages, 1)
	msg := fc.messages[0]
	assert.Equal(t, "vehicalc/alice/events", msg.topic)
	assert.False(t, msg.retained)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, "Feb", decoded["month"])
	assert.Equal(t, "distance", decoded["strategy"])
	assert.InDelta(t, 10.5, decoded["kg_co2"], 1e-9)
	assert.NotContains(t, decoded, "fuel")
}

func TestPublishTotals(t *testing.T) {
	fc := &fakeClient{}
	p := newWithClient(fc, "home/co2", zerolog.Nop())

	require.NoError(t, p.PublishTotals("bob", models.MonthlyTotals{models.Feb: 7}))

	require.Len(t, fc.messages, models.MonthCount)
	assert.Equal(t, "home/co2/bob/monthly/Jan", fc.messages[0].topic)
	assert.Equal(t, "0.00", string(fc.messages[0].payload))
	assert.Equal(t, "home/co2/bob/monthly/Feb", fc.messages[1].topic)
	assert.Equal(t, "7.00", string(fc.messages[1].payload))
	assert.True(t, fc.messages[11].retained)
}

func TestPublishError(t *testing.T) {
	fc := &fakeClient{err: errors.New("not connected")}
	p := newWithClient(fc, "vehicalc", zerolog.Nop())

	err := p.PublishTotals("bob", models.MonthlyTotals{})
	assert.ErrorContains(t, err, "not connected")
	assert.Len(t, fc.messages, 1, "stops at the first failure")
}

func TestClose(t *testing.T) {
	fc := &fakeClient{connected: true}
	newWithClient(fc, "vehicalc", zerolog.Nop()).Close()
	assert.True(t, fc.disconnected)
}

func TestNewRequiresEnabled(t *testing.T) {
	_, err := New(&config.Config{}, zerolog.Nop())
	assert.Error(t, err)

	cfg := &config.Config{MQTT: config.MQTTConfig{Enabled: true}}
	_, err = New(cfg, zerolog.Nop())
	assert.Error(t, err)
}
