package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	questions []string
	answers   map[string]string
	errs      map[string]error
}

func (f *fakeAsker) Ask(_ context.Context, q string) (string, error) {
	f.questions = append(f.questions, q)
	if err, ok := f.errs[q]; ok {
		return "", err
	}
	if a, ok := f.answers[q]; ok {
		return a, nil
	}
	return "answer to " + q, nil
}

func run(t *testing.T, input string, asker Asker) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := New(strings.NewReader(input), &out, &errOut, asker).Run(context.Background())
	return out.String(), errOut.String(), err
}

func TestRun_ExitFirst(t *testing.T) {
	for _, in := range []string{"exit\n", "EXIT\n", "  Exit  \n"} {
		asker := &fakeAsker{}
		out, errOut, err := run(t, in+"never asked\n", asker)
		require.NoError(t, err)
		assert.Empty(t, asker.questions)
		assert.Empty(t, errOut)
		assert.Equal(t, 1, strings.Count(out, Prompt))
		assert.Contains(t, out, ClosingMessage)
	}
}

func TestRun_AnswersQuestions(t *testing.T) {
	asker := &fakeAsker{answers: map[string]string{"What is RAG?": "Retrieval augmented generation."}}
	out, errOut, err := run(t, "  What is RAG?  \nsecond\nexit\n", asker)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is RAG?", "second"}, asker.questions)
	assert.Contains(t, out, "Retrieval augmented generation.")
	assert.Contains(t, out, "answer to second")
	assert.Equal(t, 3, strings.Count(out, Prompt))
	assert.Empty(t, errOut)
}

func TestRun_FailedTurnContinues(t *testing.T) {
	asker := &fakeAsker{errs: map[string]error{"bad": errors.New("generation failed: dial tcp: network unreachable")}}
	out, errOut, err := run(t, "bad\ngood\nexit\n", asker)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "good"}, asker.questions)
	assert.Contains(t, errOut, "Error: generation failed: dial tcp: network unreachable")
	assert.Contains(t, out, "answer to good")
	assert.Contains(t, out, ClosingMessage)
}

func TestRun_BlankLinesReprompt(t *testing.T) {
	asker := &fakeAsker{}
	out, _, err := run(t, "\n   \n\t\nexit\n", asker)
	require.NoError(t, err)
	assert.Empty(t, asker.questions)
	assert.Equal(t, 4, strings.Count(out, Prompt))
}

func TestRun_EOFEndsSession(t *testing.T) {
	asker := &fakeAsker{}
	out, _, err := run(t, "only question", asker)
	require.NoError(t, err)
	assert.Equal(t, []string{"only question"}, asker.questions)
	assert.Contains(t, out, ClosingMessage)
}

func TestRun_ExitInsideSentenceIsAQuestion(t *testing.T) {
	asker := &fakeAsker{}
	_, _, err := run(t, "how do I exit vim\nexit\n", asker)
	require.NoError(t, err)
	assert.Equal(t, []string{"how do I exit vim"}, asker.questions)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asker := &fakeAsker{}
	var out bytes.Buffer
	err := New(strings.NewReader("q\n"), &out, &out, asker).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, asker.questions)
}

func TestIsExit(t *testing.T) {
	assert.True(t, IsExit("exit"))
	assert.True(t, IsExit(" eXiT\t"))
	assert.False(t, IsExit("exit now"))
	assert.False(t, IsExit("quit"))
}
