package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// transcribePrompt asks the vision model to act as a plain OCR engine.
// The heuristics downstream want the document text as printed, one
// document line per output line, with no model-side interpretation.
const transcribePrompt = `You are transcribing a scanned receipt or bank statement. Read every line of text in the image, top to bottom.

Return the transcription as plain text, one line of the document per line of output, preserving the order in which lines appear.

Important:
- Keep amounts, dates and descriptions exactly as printed
- Do not summarize, annotate or reformat
- Do not translate or "fix" anything
- Do not use markdown code blocks`

// Gemini implements the Scanner interface using Google Gemini vision
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// ExtractText renders the upload to PNG and asks the model for a
// verbatim transcription.
func (g *Gemini) ExtractText(data []byte, contentType string) (*ScanResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// PDFs and phone formats (HEIC) go through PNG first.
	pngData, err := preparePage(data, contentType)
	if err != nil {
		return nil, err
	}

	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(transcribePrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var transcript strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			transcript.WriteString(string(text))
		}
	}

	text := stripFences(transcript.String())
	if text == "" {
		return nil, fmt.Errorf("gemini returned an empty transcription")
	}

	return &ScanResult{Text: text}, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// stripFences removes the markdown code fences vision models like to
// wrap output in even when told not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
