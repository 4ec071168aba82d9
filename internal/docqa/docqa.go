// Package docqa answers natural-language questions about PDF documents.
//
// The pipeline extracts per-page text, embeds every page alongside the
// question, picks the most similar page by cosine similarity and asks a
// text generation model to answer from that page alone. Nothing is cached
// between questions; every invocation re-reads and re-embeds the document.
package docqa

import (
	"context"
	"fmt"
	"strings"
)

// answerMaxNewTokens caps the length of the generated answer.
const answerMaxNewTokens = 100

// noTextMessage is returned when the PDF yields no extractable text.
const noTextMessage = "No text found in the PDF."

// Extractor pulls per-page plain text out of a document on disk.
type Extractor interface {
	// ExtractPages returns the trimmed text of each non-empty page,
	// in page order. A PDF with no extractable text yields an empty slice.
	ExtractPages(path string) ([]string, error)
}

// Embedder converts a batch of texts into embedding vectors. The returned
// slice must be parallel to the input slice.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion for a prompt, emitting at most
// maxNewTokens new tokens.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error)
}

// Pipeline wires extraction, embedding and generation into a single
// question answering flow. It is stateless and safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	embedder  Embedder
	generator Generator
}

// New constructs a Pipeline from its three collaborators.
func New(extractor Extractor, embedder Embedder, generator Generator) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
	}
}

// Answer answers a question about the PDF at path. The result is always a
// human-readable string: an answer prefixed with "Answer: ", a notice that
// the document holds no text, or an error description when any stage fails.
func (p *Pipeline) Answer(ctx context.Context, path, question string) string {
	out, err := p.answer(ctx, path, question)
	if err != nil {
		return fmt.Sprintf("Error processing document QnA: %v", err)
	}
	return out
}

func (p *Pipeline) answer(ctx context.Context, path, question string) (string, error) {
	pages, err := p.extractor.ExtractPages(path)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return noTextMessage, nil
	}

	// Embed every page and the question in one batch; the question
	// vector is the final element.
	inputs := make([]string, 0, len(pages)+1)
	inputs = append(inputs, pages...)
	inputs = append(inputs, question)

	vectors, err := p.embedder.Embed(ctx, inputs)
	if err != nil {
		return "", err
	}
	if len(vectors) != len(inputs) {
		return "", fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(inputs))
	}

	queryVec := vectors[len(vectors)-1]
	best := mostSimilar(vectors[:len(vectors)-1], queryVec)

	var prompt strings.Builder
	prompt.WriteString("Context: ")
	prompt.WriteString(pages[best])
	prompt.WriteString("\nQuestion: ")
	prompt.WriteString(question)

	answer, err := p.generator.Generate(ctx, prompt.String(), answerMaxNewTokens)
	if err != nil {
		return "", err
	}
	// Generators are not required to trim; normalise here so the answer
	// format holds regardless of the backend.
	return "Answer: " + strings.TrimSpace(answer), nil
}
