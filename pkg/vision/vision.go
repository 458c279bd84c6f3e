// Package vision implements the frame analysis collaborator on top of an
// OpenAI-compatible multimodal chat endpoint.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"sceneforge/internal/timeline"
	"sceneforge/internal/types"
	"sceneforge/log"
	"sceneforge/pkg/errors"
	"sceneforge/pkg/util"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	cfg.HTTPClient = &http.Client{}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// AnalyzeUnit sends the unit's frames and dialogue to the vision model and
// decodes the structured response. The returned fields are passed through
// downstream without interpretation.
func (c *Client) AnalyzeUnit(ctx context.Context, unit timeline.Unit, framePaths []string) (timeline.Analysis, error) {
	dialogue := unit.DialogueText()
	if dialogue == "" {
		dialogue = "(none)"
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf(types.VisionUserPromptTemplate, unit.ID(), unit.Duration(), dialogue),
		},
	}
	for _, p := range framePaths {
		dataURI, err := encodeFrame(p)
		if err != nil {
			return timeline.Analysis{}, err
		}
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailLow},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: types.VisionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return timeline.Analysis{}, errors.Wrap(errors.CodeAnalysisFailed, "vision analysis call failed", err)
	}
	if len(resp.Choices) == 0 {
		return timeline.Analysis{}, errors.New(errors.CodeAnalysisFailed, "vision analysis returned no choices")
	}

	var analysis timeline.Analysis
	raw := resp.Choices[0].Message.Content
	if err := util.DecodeModelJson(raw, &analysis); err != nil {
		log.GetLogger().Warn("analysis response not valid JSON, keeping raw text as description",
			zap.String("unit", unit.ID()))
		analysis = timeline.Analysis{Description: raw, Prompt: raw}
	}
	if analysis.Prompt == "" {
		analysis.Prompt = analysis.Description
	}
	return analysis, nil
}

func encodeFrame(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.CodeFrameExtract, "read frame image", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}
