package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ask/internal/domain"
)

type stubService struct {
	result *domain.Result
	err    error
	asked  string
}

func (s *stubService) Answer(ctx context.Context, question string) (*domain.Result, error) {
	s.asked = question
	return s.result, s.err
}

func pressEnterWith(m Model, question string) (Model, tea.Cmd) {
	m.input.SetValue(question)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestEnterSubmitsQuestion(t *testing.T) {
	svc := &stubService{result: &domain.Result{Answer: "an answer"}}
	m := New(svc, "2 documents indexed")

	m, cmd := pressEnterWith(m, "what is AI?")
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Contains(t, m.status, `Researching "what is AI?"`)

	msg := cmd()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	require.NoError(t, answer.err)
	assert.Equal(t, "what is AI?", svc.asked)

	next, _ := m.Update(answer)
	m = next.(Model)
	assert.False(t, m.waiting)
	assert.Contains(t, m.status, "Answer synthesized")
}

func TestEnterIgnoredWhileWaiting(t *testing.T) {
	svc := &stubService{result: &domain.Result{Answer: "slow answer"}}
	m := New(svc, "")

	m, cmd := pressEnterWith(m, "first question")
	require.NotNil(t, cmd)

	_, second := pressEnterWith(m, "second question")
	assert.Nil(t, second, "a second submit must wait for the running one")
}

func TestEnterIgnoredOnBlankInput(t *testing.T) {
	m := New(&stubService{}, "")
	m, cmd := pressEnterWith(m, "   ")
	assert.Nil(t, cmd)
	assert.False(t, m.waiting)
}

func TestAnswerErrorShownInStatus(t *testing.T) {
	m := New(&stubService{}, "")
	next, _ := m.Update(answerMsg{err: errors.New("backend unreachable")})
	m = next.(Model)
	assert.Contains(t, m.status, "Error: backend unreachable")
	assert.False(t, m.waiting)
}

func TestRenderResultListsSources(t *testing.T) {
	out := renderResult(&domain.Result{
		Answer: "AI mimics human reasoning [1].",
		Citations: []domain.Citation{
			{Index: 1, Title: "What is AI? | IBM", SourceLocation: "https://www.ibm.com/topics/ai", OriginDomain: "ibm.com"},
		},
	})
	assert.Contains(t, out, "AI mimics human reasoning [1].")
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "[1] What is AI? | IBM (ibm.com)")
	assert.Contains(t, out, "    https://www.ibm.com/topics/ai")
}

func TestRenderResultWithoutCitations(t *testing.T) {
	out := renderResult(&domain.Result{Answer: "No sources were available."})
	assert.Equal(t, "No sources were available.", out)
}
