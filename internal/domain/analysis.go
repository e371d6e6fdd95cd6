package domain

// ResultTypeImage is the only result type this service produces.
const ResultTypeImage = "image"

// AnalysisResult is the extracted text for one image.
type AnalysisResult struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// GenerationConfig holds the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// DefaultGenerationConfig keeps the model close to deterministic.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.4,
		TopP:            1,
		TopK:            32,
		MaxOutputTokens: 8192,
	}
}

// ModelRequest is one prompt plus one image.
type ModelRequest struct {
	Prompt     string
	Image      []byte
	MIMEType   string
	Generation GenerationConfig
}

// DTOs

type AnalyzeRequest struct {
	Filename string `json:"filename"`
}

type AnalyzeResponse struct {
	Success bool            `json:"success"`
	Result  *AnalysisResult `json:"result"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	FileURL  string `json:"file_url"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
