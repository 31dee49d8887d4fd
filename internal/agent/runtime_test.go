package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/mesh/internal/adapter/agentclient"
	"github.com/xiaot623/gogo/mesh/internal/adapter/index"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/tests/helpers"
)

var h1Card = domain.AgentCard{ID: "h1", Name: "Health Agent", BaseURL: "http://h1", Capabilities: domain.Capabilities{"health.triage"}}

func TestRuntimeLocalFirstDoesNotDelegate(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "If you have fever, rest and drink fluids.", Score: 0.92}}}
	sender := newFakeSender()
	sender.replies["s1"] = reply("s1", "sports")
	delegator := NewDelegationClient("h1", &fakeDirectory{peers: peers("h1", "s1")}, sender, fastPolicy)

	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", idx, 0.3), delegator)
	resp := rt.Handle(context.Background(), *envelope("coordinator", "fever"))

	assert.Equal(t, "h1", resp.From)
	assert.Equal(t, "health.search", resp.Tool)
	assert.Equal(t, "If you have fever, rest and drink fluids.", resp.Answer)
	assert.NotEmpty(t, resp.SourceHits)
	assert.Zero(t, sender.totalCalls())
}

func TestRuntimeDelegationFallback(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "irrelevant", Score: 0.05}}}
	sender := newFakeSender()
	sender.replies["s1"] = reply("s1", "Football is played with 11 players per side.", "football note")
	sender.replies["s2"] = reply("s2", "Always stretch before running.", "stretch note")
	delegator := NewDelegationClient("h1", &fakeDirectory{peers: peers("h1", "s1", "s2")}, sender, fastPolicy)

	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", idx, 0.3), delegator)
	resp := rt.Handle(context.Background(), *envelope("coordinator", "football"))

	assert.Equal(t, 1, sender.callCount("s1"))
	assert.Equal(t, 1, sender.callCount("s2"))
	assert.Zero(t, sender.callCount("h1"))
	assert.Equal(t, "h1", resp.From)
	assert.ElementsMatch(t, []string{"football note", "stretch note"}, resp.SourceHits)
	assert.Contains(t, resp.Answer, "Football is played with 11 players per side.")
	assert.Contains(t, resp.Answer, "Always stretch before running.")
	assert.Contains(t, resp.Answer, domain.AnswerSeparator)
}

func TestRuntimeSkipsPeersWithoutAnswer(t *testing.T) {
	delegator := &countingDelegator{replies: []agentclient.Response{
		{From: "s1", Text: strPtr("text only"), SourceHits: []string{"t"}},
		*reply("s2", "real answer", "r"),
	}}
	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", &fakeIndex{}, 0.3), delegator)

	resp := rt.Handle(context.Background(), *envelope("coordinator", "q"))
	assert.Equal(t, "real answer", resp.Answer)
	assert.Equal(t, []string{"t", "r"}, resp.SourceHits)
}

func TestRuntimePlaceholder(t *testing.T) {
	ctx := context.Background()
	insp := inspector.New(helpers.NewTestSQLiteStore(t))
	delegator := &countingDelegator{replies: []agentclient.Response{{From: "s1", Text: strPtr("no answer field")}}}
	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", &fakeIndex{}, 0.3), delegator, WithRuntimeInspector(insp))

	resp := rt.Handle(ctx, *envelope("coordinator", "quantum physics"))
	assert.Equal(t, "No data available from h1.", resp.Answer)
	assert.NotNil(t, resp.SourceHits)
	assert.Empty(t, resp.SourceHits)

	events, err := insp.Recent(ctx, "h1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventTypeFallback, events[0].Type)
}

func TestRuntimeEmptyQueryShortCircuits(t *testing.T) {
	idx := &fakeIndex{hits: []index.Hit{{Text: "x", Score: 1}}}
	delegator := &countingDelegator{}
	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", idx, 0.3), delegator)

	resp := rt.Handle(context.Background(), *envelope("coordinator", "   "))
	assert.Equal(t, NoDataFrom("h1"), resp.Answer)
	assert.Empty(t, idx.queries)
	assert.Zero(t, delegator.calls)
}

func TestRuntimeForwardsBoundedEnvelope(t *testing.T) {
	delegator := &countingDelegator{replies: []agentclient.Response{*reply("s1", "a")}}
	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", &fakeIndex{}, 0.3), delegator, WithMaxHops(3))

	rt.Handle(context.Background(), *envelope("coordinator", " fever "))
	require.NotNil(t, delegator.last)
	assert.Equal(t, "h1", delegator.last.From)
	assert.Equal(t, "fever", delegator.last.Payload.Query)
	assert.Equal(t, []string{"coordinator", "h1"}, delegator.last.Visited)
	require.NotNil(t, delegator.last.TTL)
	assert.Equal(t, 2, *delegator.last.TTL)
	assert.NotEmpty(t, delegator.last.MessageID)

	ttl := 1
	in := domain.DelegationEnvelope{From: "s1", Payload: domain.Query{Query: "q"}, Visited: []string{"coordinator", "s1"}, TTL: &ttl}
	rt.Handle(context.Background(), in)
	assert.Equal(t, []string{"coordinator", "s1", "h1"}, delegator.last.Visited)
	assert.Equal(t, 0, *delegator.last.TTL)
}

func TestRuntimeStopsAtHopLimit(t *testing.T) {
	delegator := &countingDelegator{replies: []agentclient.Response{*reply("s1", "a")}}
	rt := NewRuntime(h1Card, "health.search", NewAnswerEngine("h1", "health.search", &fakeIndex{}, 0.3), delegator)

	ttl := 0
	resp := rt.Handle(context.Background(), domain.DelegationEnvelope{From: "s1", Payload: domain.Query{Query: "q"}, TTL: &ttl})
	assert.Equal(t, NoDataFrom("h1"), resp.Answer)
	assert.Zero(t, delegator.calls)

	rt = NewRuntime(h1Card, "health.search", nil, delegator, WithMaxHops(0))
	resp = rt.Handle(context.Background(), *envelope("coordinator", "q"))
	assert.Equal(t, NoDataFrom("h1"), resp.Answer)
	assert.Zero(t, delegator.calls)
}
