package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

func TestNewTranscriptStore(t *testing.T) {
	store := NewTranscriptStore()
	require.NotNil(t, store)
	assert.Empty(t, store.SessionID())
	assert.Equal(t, 0, store.Len())
	assert.NotNil(t, store.Messages())
}

func TestTranscriptStore_AppendPreservesOrder(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset("abc123")

	i0 := store.Append(domain.UserMessage("What is the total?"))
	i1 := store.Append(domain.Message{Sender: domain.SenderBot, Text: "$500", Sources: []string{"p.3"}})

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.SenderUser, msgs[0].Sender)
	assert.Equal(t, "What is the total?", msgs[0].Text)
	assert.Equal(t, domain.SenderBot, msgs[1].Sender)
	assert.Equal(t, []string{"p.3"}, msgs[1].Sources)
}

func TestTranscriptStore_ResetScopesAndEmpties(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset("first")
	store.Append(domain.UserMessage("hello"))

	store.Reset("second")

	assert.Equal(t, "second", store.SessionID())
	assert.Equal(t, 0, store.Len())
}

func TestTranscriptStore_Discard(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset("abc123")
	store.Append(domain.UserMessage("hello"))

	store.Discard()

	assert.Empty(t, store.SessionID())
	assert.Empty(t, store.Messages())
}

func TestTranscriptStore_MessagesReturnsCopy(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset("abc123")
	store.Append(domain.Message{Sender: domain.SenderBot, Text: "answer", Sources: []string{"p.1"}})

	msgs := store.Messages()
	msgs[0].Text = "mutated"
	msgs[0].Sources[0] = "mutated"

	fresh := store.Messages()
	assert.Equal(t, "answer", fresh[0].Text)
	assert.Equal(t, []string{"p.1"}, fresh[0].Sources)
}

func TestTranscriptStore_AppendCopiesSources(t *testing.T) {
	store := NewTranscriptStore()
	sources := []string{"p.1"}
	store.Append(domain.Message{Sender: domain.SenderBot, Text: "answer", Sources: sources})

	sources[0] = "mutated"

	assert.Equal(t, []string{"p.1"}, store.Messages()[0].Sources)
}

func TestTranscriptStore_ConcurrentAppend(t *testing.T) {
	store := NewTranscriptStore()
	store.Reset("abc123")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Append(domain.UserMessage("q"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
