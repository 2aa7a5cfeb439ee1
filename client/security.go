package client

import (
	"context"
	"net/http"

	"github.com/hawkkey/hawkkey-go/domain/apierror"
)

// PromptAnalysis is the outcome of a prompt security analysis. It is
// only returned for prompts the service did not block; a blocked prompt
// surfaces as an apierror.KindPromptBlocked error instead, regardless
// of the call's HTTP status.
type PromptAnalysis struct {
	Safe        bool     `json:"safe"`
	Blocked     bool     `json:"blocked"`
	RiskScore   float64  `json:"riskScore"`
	Threats     []string `json:"threats"`
	Action      string   `json:"action"`
	Explanation string   `json:"explanation"`
}

type analyzePromptRequest struct {
	Prompt  string            `json:"prompt"`
	Context map[string]string `json:"context,omitempty"`
}

// AnalyzePrompt submits a prompt for threat analysis.
func (c *Client) AnalyzePrompt(ctx context.Context, prompt string, promptContext map[string]string) (PromptAnalysis, error) {
	if prompt == "" {
		return PromptAnalysis{}, apierror.SDK(0, "invalid_request", "prompt is required")
	}

	req := analyzePromptRequest{Prompt: prompt, Context: promptContext}

	var resp PromptAnalysis
	if err := c.do(ctx, "analyze_prompt", http.MethodPost, "/v1/security/analyze-prompt", req, &resp, nil); err != nil {
		return PromptAnalysis{}, err
	}

	if resp.Blocked {
		return PromptAnalysis{}, apierror.PromptBlocked(resp.RiskScore, resp.Threats)
	}
	return resp, nil
}
