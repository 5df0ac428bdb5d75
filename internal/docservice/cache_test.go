package docservice

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingService struct {
	processCalls int
	askCalls     int
	err          error
}

func (s *countingService) Process(ctx context.Context, doc *Document) (*Summary, error) {
	s.processCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &Summary{Summary: "summary of " + doc.Name, Questions: []string{"Q1"}}, nil
}

func (s *countingService) Ask(ctx context.Context, doc *Document, question string) (*Answer, error) {
	s.askCalls++
	return &Answer{Answer: "answer"}, nil
}

func TestCachedClient_MemoizesByContent(t *testing.T) {
	next := &countingService{}
	svc := NewCachedClient(next, time.Minute)

	first, err := svc.Process(context.Background(), NewDocument("a.pdf", []byte("same")))
	require.NoError(t, err)

	second, err := svc.Process(context.Background(), NewDocument("b.pdf", []byte("same")))
	require.NoError(t, err)

	assert.Equal(t, 1, next.processCalls)
	assert.Equal(t, first.Summary, second.Summary)

	second.Questions[0] = "mutated"
	third, err := svc.Process(context.Background(), NewDocument("c.pdf", []byte("same")))
	require.NoError(t, err)
	assert.Equal(t, "Q1", third.Questions[0])

	_, err = svc.Process(context.Background(), NewDocument("a.pdf", []byte("different")))
	require.NoError(t, err)
	assert.Equal(t, 2, next.processCalls)

	assert.Equal(t, 2, svc.(*CachedClient).size())
}

func TestCachedClient_DoesNotCacheErrorsOrQuestions(t *testing.T) {
	next := &countingService{err: &Error{Kind: KindServer, Message: "boom"}}
	svc := NewCachedClient(next, time.Minute)

	doc := NewDocument("a.pdf", []byte("x"))
	_, err := svc.Process(context.Background(), doc)
	require.Error(t, err)
	_, err = svc.Process(context.Background(), doc)
	require.Error(t, err)
	assert.Equal(t, 2, next.processCalls)

	_, _ = svc.Ask(context.Background(), doc, "q")
	_, _ = svc.Ask(context.Background(), doc, "q")
	assert.Equal(t, 2, next.askCalls)
}

func TestCachedClient_DisabledWithZeroTTL(t *testing.T) {
	next := &countingService{}
	svc := NewCachedClient(next, 0)
	assert.Same(t, next, svc)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}
