package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiService_RequiresAPIKeys(t *testing.T) {
	_, err := NewGeminiService(nil, "gemini-1.5-flash")
	require.Error(t, err)
}

// Concurrent calls each get their own model carrying their own system
// instruction; a shared model would let one call's instruction leak into
// another's request.
func TestGeminiGenerativeModel_PerCallSystemInstruction(t *testing.T) {
	svc, err := NewGeminiService([]string{"test-key"}, "gemini-1.5-flash")
	require.NoError(t, err)

	const workers = 8
	models := make([]*genai.GenerativeModel, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			models[i] = svc.generativeModel(fmt.Sprintf("instruction %d", i))
		}(i)
	}
	wg.Wait()

	for i, model := range models {
		require.NotNil(t, model.SystemInstruction)
		require.Len(t, model.SystemInstruction.Parts, 1)
		assert.Equal(t, genai.Text(fmt.Sprintf("instruction %d", i)), model.SystemInstruction.Parts[0])
		if i > 0 {
			assert.NotSame(t, models[0], model)
		}
	}
}
