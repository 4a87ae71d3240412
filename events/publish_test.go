package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	conn := &recordingConn{}
	p := NewPublisher(conn, "")
	require.True(t, p.Enabled())

	require.NoError(t, p.Publish(BuildEvent{Path: "entities/frog.json", Identifier: "test:frog", Success: true, Expanded: map[string]int{"amphibian": 1}}))
	require.NoError(t, p.Publish(BuildEvent{Path: "entities/toad.json", Error: "boom", Kind: "unknown_component"}))

	assert.Equal(t, []string{"addonsmith.build.success", "addonsmith.build.failure"}, conn.subjects)

	var ev BuildEvent
	require.NoError(t, json.Unmarshal(conn.payloads[0], &ev))
	assert.Equal(t, "test:frog", ev.Identifier)
	assert.Equal(t, 1, ev.Expanded["amphibian"])
	assert.False(t, ev.Time.IsZero())
}

func TestPublisher_Disabled(t *testing.T) {
	p := NewPublisher(nil, "custom.prefix")
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Publish(BuildEvent{Path: "x"}))

	var nilPub *Publisher
	assert.False(t, nilPub.Enabled())
	assert.NoError(t, nilPub.Publish(BuildEvent{}))
}

func TestPublisher_Error(t *testing.T) {
	p := NewPublisher(&recordingConn{err: errors.New("closed")}, "p")
	err := p.Publish(BuildEvent{Success: true})
	assert.ErrorContains(t, err, "closed")
	assert.Equal(t, "p.success", p.Subject(BuildEvent{Success: true}))
}
