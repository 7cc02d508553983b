package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	questions []string
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, q string) (string, error) {
	f.questions = append(f.questions, q)
	if f.err != nil {
		return "", f.err
	}
	return "answer to " + q, nil
}

func newModel(asker Asker) Model {
	m := New(context.Background(), asker, "doc.pdf", "digest")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model)
}

func enter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestExitQuits(t *testing.T) {
	for _, text := range []string{"exit", " EXIT "} {
		asker := &fakeAsker{}
		_, cmd := enter(t, newModel(asker), text)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, asker.questions)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newModel(&fakeAsker{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAskRoundTrip(t *testing.T) {
	asker := &fakeAsker{}
	m, cmd := enter(t, newModel(asker), "What is RAG?")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	msg := cmd()
	require.IsType(t, answerMsg{}, msg)
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.busy)
	assert.Equal(t, []string{"What is RAG?"}, asker.questions)
	require.Len(t, m.transcript, 1)
	assert.Equal(t, "answer to What is RAG?", m.transcript[0].answer)
	assert.Contains(t, m.renderTranscript(), "answer to What is RAG?")
}

func TestAskErrorKeepsRunning(t *testing.T) {
	asker := &fakeAsker{err: errors.New("quota exceeded")}
	m, cmd := enter(t, newModel(asker), "q")
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	assert.Equal(t, "Error: quota exceeded", m.status)
	assert.Contains(t, m.View(), "quota exceeded")
}

func TestBlankAndBusyIgnored(t *testing.T) {
	asker := &fakeAsker{}
	m, cmd := enter(t, newModel(asker), "   ")
	assert.Nil(t, cmd)

	m.busy = true
	_, cmd = enter(t, m, "another")
	assert.Nil(t, cmd)
	assert.Empty(t, asker.questions)
}
