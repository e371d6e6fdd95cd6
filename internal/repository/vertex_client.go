package repository

import (
	"context"
	"fmt"
	"strings"

	"image-text-reader/internal/domain"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexClient calls Gemini through Vertex AI using application default credentials.
type VertexClient struct {
	client *genai.Client
	model  contentGenerator
	logger domain.Logger
}

func NewVertexClient(
	ctx context.Context,
	projectID string,
	location string,
	modelName string,
	gen domain.GenerationConfig,
	logger domain.Logger,
) (*VertexClient, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get default credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, projectID, location, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(gen.Temperature)
	model.SetTopP(gen.TopP)
	model.SetTopK(gen.TopK)
	model.SetMaxOutputTokens(gen.MaxOutputTokens)

	logger.Info("Vertex AI client initialized", "project", projectID, "location", location, "model", modelName)
	return &VertexClient{client: client, model: model, logger: logger}, nil
}

// Generate sends the prompt and image. Sampling parameters are fixed on the model at construction.
func (c *VertexClient) Generate(ctx context.Context, req *domain.ModelRequest) (string, error) {
	resp, err := c.model.GenerateContent(ctx,
		genai.Text(req.Prompt),
		genai.Blob{MIMEType: req.MIMEType, Data: req.Image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		c.logger.Warn("Vertex AI returned no text", "finish_reason", resp.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}

// Close releases the underlying gRPC connection.
func (c *VertexClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
