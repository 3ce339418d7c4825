package dsl_test

import (
	"context"
	"testing"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/Myangsun/HiyaDrive/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *domain.SessionState) {}

func always(label string) dsl.Router {
	return func(*domain.SessionState) string { return label }
}

func TestBuilder_SimpleFlow(t *testing.T) {
	b := dsl.New()
	b.Add("start", noop).Describe("first").Go("ask")
	b.Add("ask", noop).
		Route(always("yes")).
		Branch("yes", "done").
		Branch("no", "stop")
	b.Add("done", noop).Terminal()
	b.Add("stop", noop).Terminal()

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "start", g.Start())
	steps := g.Steps()
	require.Len(t, steps, 4)
	assert.Equal(t, []string{"start", "ask", "done", "stop"}, []string{steps[0].ID, steps[1].ID, steps[2].ID, steps[3].ID})
	assert.Equal(t, "first", steps[0].Description)

	ask, ok := g.Step("ask")
	require.True(t, ok)
	edge, ok := ask.Branch("no")
	require.True(t, ok)
	assert.Equal(t, "stop", edge.To)
	_, ok = ask.Branch("maybe")
	assert.False(t, ok)
}

func TestBuilder_RetryPoint(t *testing.T) {
	b := dsl.New()
	b.Add("dial", noop).Go("talk")
	b.Add("talk", noop).RetryAt("dial").OnError("recover").Go("done")
	b.Add("recover", noop).
		Route(always("retry")).
		Branch("retry", dsl.Resume).
		Branch("stop", "done")
	b.Add("done", noop).Terminal()

	g, err := b.Build()
	require.NoError(t, err)

	talk, _ := g.Step("talk")
	dial, _ := g.Step("dial")
	rec, _ := g.Step("recover")
	assert.Equal(t, "dial", talk.RetryPoint())
	assert.Equal(t, "dial", dial.RetryPoint())
	assert.True(t, rec.HasResume())
	assert.False(t, talk.HasResume())
}

func TestBuilder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *dsl.Builder)
		want  string
	}{
		{
			name:  "empty graph",
			build: func(b *dsl.Builder) {},
			want:  "graph has no steps",
		},
		{
			name: "unknown target",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).Go("ghost")
			},
			want: "points to unknown step 'ghost'",
		},
		{
			name: "missing terminal",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).Go("b")
				b.Add("b", noop).Go("a")
			},
			want: "graph has no terminal step",
		},
		{
			name: "unreachable step",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).Go("end")
				b.Add("orphan", noop).Go("end")
				b.Add("end", noop).Terminal()
			},
			want: "step 'orphan' is unreachable from 'a'",
		},
		{
			name: "dead end",
			build: func(b *dsl.Builder) {
				b.Add("a", noop)
				b.Add("end", noop).Terminal()
			},
			want: "step 'a' is not terminal and has no way out",
		},
		{
			name: "terminal with edges",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).Go("end")
				b.Add("end", noop).Terminal().Go("a")
			},
			want: "terminal step 'end' declares outgoing edges",
		},
		{
			name: "router without branches",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).Route(always("x"))
				b.Add("end", noop).Terminal()
			},
			want: "has a router but no branches",
		},
		{
			name: "missing handler",
			build: func(b *dsl.Builder) {
				b.Add("a", nil).Go("end")
				b.Add("end", noop).Terminal()
			},
			want: "step 'a' has no handler",
		},
		{
			name: "unknown retry point",
			build: func(b *dsl.Builder) {
				b.Add("a", noop).RetryAt("nowhere").Go("end")
				b.Add("end", noop).Terminal()
			},
			want: "retries at unknown step 'nowhere'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dsl.New()
			tt.build(b)
			_, err := b.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidGraph)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuilder_ResumeMakesRetryPointReachable(t *testing.T) {
	b := dsl.New()
	b.Add("a", noop).Go("b")
	b.Add("b", noop).RetryAt("c").OnError("recover").Go("end")
	b.Add("recover", noop).Route(always("retry")).Branch("retry", dsl.Resume)
	// c is only reachable through the Resume edge of recover.
	b.Add("c", noop).Go("end")
	b.Add("end", noop).Terminal()

	_, err := b.Build()
	assert.NoError(t, err)
}

func TestBuilder_AddTwiceReturnsSameStep(t *testing.T) {
	b := dsl.New()
	b.Add("a", nil).Go("end")
	b.Add("a", noop)
	b.Add("end", noop).Terminal()

	g, err := b.Build()
	require.NoError(t, err)
	a, _ := g.Step("a")
	assert.Equal(t, "end", a.Next)
	assert.NotNil(t, a.Handler)
}
