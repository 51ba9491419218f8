package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/batch"
	"github.com/devfikr/subpolish/internal/models"
	"github.com/devfikr/subpolish/internal/providers/llm"
	"github.com/devfikr/subpolish/internal/utils"
)

// ProviderFactory builds the text-generation capability for one request.
// apiKey may be empty when the deployment runs on server credentials.
type ProviderFactory func(ctx context.Context, apiKey, model string) (llm.Provider, error)

type OptimizeService interface {
	// Optimize runs the whole batch protocol and returns the optimized
	// items sorted by index. It either covers every submitted non-empty
	// item or fails; there is no partial result.
	Optimize(ctx context.Context, apiKey, model string, items []models.CaptionContent) ([]models.CaptionContent, error)
}

type optimizeService struct {
	newProvider ProviderFactory
	log         *logrus.Logger
	maxTokens   int
	charsPerTok int
	maxItems    int
}

func NewOptimizeService(newProvider ProviderFactory, log *logrus.Logger) OptimizeService {
	return &optimizeService{
		newProvider: newProvider,
		log:         log,
		maxTokens:   batch.DefaultMaxTokensPerBatch,
		charsPerTok: batch.DefaultCharsPerToken,
		maxItems:    batch.MaxItemsPerRequest,
	}
}

// runState tracks the orchestration phases. Failing from any phase discards
// everything merged so far: a half-optimized document is worse than an
// explicit failure.
type runState int

const (
	statePlanning runState = iota
	stateSubmitting
	stateMerging
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case statePlanning:
		return "planning"
	case stateSubmitting:
		return "submitting"
	case stateMerging:
		return "merging"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

func (s *optimizeService) Optimize(ctx context.Context, apiKey, model string, items []models.CaptionContent) ([]models.CaptionContent, error) {
	const op = "OptimizeService.Optimize"

	if len(items) > s.maxItems {
		return nil, utils.E(utils.CodeBatchSize, op,
			fmt.Sprintf("Maximum %d subtitles per request, got %d", s.maxItems, len(items)), nil)
	}

	state := statePlanning
	fail := func(err error) error {
		state = stateFailed
		s.log.WithFields(logrus.Fields{
			"state": state.String(),
			"error": err.Error(),
		}).Warn("optimize failed, discarding merged batches")
		return err
	}

	filtered := make([]models.CaptionContent, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Content) != "" {
			filtered = append(filtered, it)
		}
	}
	if len(filtered) == 0 {
		return nil, utils.E(utils.CodeValidation, op, "no subtitles to optimize", nil)
	}

	provider, err := s.newProvider(ctx, apiKey, model)
	if err != nil {
		return nil, utils.E(utils.CodeValidation, op, "optimizer is not configured", err)
	}
	defer provider.Close()

	batches := batch.Plan(filtered, s.maxTokens, s.charsPerTok)
	s.log.WithFields(logrus.Fields{
		"state":   state.String(),
		"items":   len(filtered),
		"batches": len(batches),
	}).Debug("planned batches")

	// Batches go out strictly sequentially; upstream throughput limits rule
	// out any concurrency here, and arrival order is never the merge key.
	state = stateSubmitting
	merged := make(map[int]string, len(filtered))
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, fail(utils.E(utils.CodeUnavailable, op, "request cancelled", err))
		}

		s.log.WithFields(logrus.Fields{
			"state": state.String(),
			"batch": b.BatchNumber,
			"total": b.TotalBatches,
			"items": len(b.Items),
		}).Info("submitting batch")

		raw, err := provider.Complete(ctx, buildPrompt(b))
		if err != nil {
			return nil, fail(classifyUpstreamError(op, err))
		}

		pairs, err := parseOptimizedPairs(raw)
		if err != nil {
			return nil, fail(utils.E(utils.CodeUpstreamFormat, op,
				fmt.Sprintf("batch %d/%d returned malformed output", b.BatchNumber, b.TotalBatches), err))
		}

		// The reply must cover exactly the indexes this batch submitted.
		// Dropped or invented indexes would leak a partial or foreign
		// result to the client, so either one fails the whole run.
		submitted := make(map[int]bool, len(b.Items))
		for _, it := range b.Items {
			submitted[it.Index] = true
		}
		for _, p := range pairs {
			if !submitted[p.Index] {
				return nil, fail(utils.E(utils.CodeUpstreamFormat, op,
					fmt.Sprintf("batch %d/%d returned unknown index %d", b.BatchNumber, b.TotalBatches, p.Index), nil))
			}
			if _, dup := merged[p.Index]; dup {
				return nil, fail(utils.E(utils.CodeUpstreamFormat, op,
					fmt.Sprintf("batch %d/%d repeated index %d", b.BatchNumber, b.TotalBatches, p.Index), nil))
			}
			merged[p.Index] = p.Content
		}
		for _, it := range b.Items {
			if _, ok := merged[it.Index]; !ok {
				return nil, fail(utils.E(utils.CodeUpstreamFormat, op,
					fmt.Sprintf("batch %d/%d dropped index %d", b.BatchNumber, b.TotalBatches, it.Index), nil))
			}
		}
	}

	state = stateMerging
	s.log.WithField("state", state.String()).Debug("sorting merged result")
	out := make([]models.CaptionContent, 0, len(merged))
	for idx, content := range merged {
		out = append(out, models.CaptionContent{Index: idx, Content: content})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	state = stateDone
	s.log.WithFields(logrus.Fields{
		"state":   state.String(),
		"batches": len(batches),
		"items":   len(out),
	}).Info("optimize complete")
	return out, nil
}

// buildPrompt frames one batch for the optimizer: scope line for larger
// batches, editing instructions, then the items and a strict output demand.
func buildPrompt(b models.OptimizationBatch) string {
	var sb strings.Builder
	sb.WriteString("You are a subtitle editor.")
	if len(b.Items) > 10 {
		first := b.Items[0].Index
		last := b.Items[len(b.Items)-1].Index
		fmt.Fprintf(&sb, " You are processing %d subtitles from index %d to %d.",
			len(b.Items), first, last)
	}
	sb.WriteString("\n\nImprove each subtitle below: fix grammar, spelling and clarity")
	sb.WriteString(" while preserving the original language, meaning and natural flow.")
	sb.WriteString(" Do not merge, split, reorder or drop subtitles.\n\n")
	sb.WriteString("Subtitles:\n")
	for _, it := range b.Items {
		pair, _ := json.Marshal(it)
		sb.Write(pair)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRespond with only a JSON array of {\"index\", \"content\"} objects,")
	sb.WriteString(" one per subtitle, same indexes, no surrounding prose.")
	return sb.String()
}

// parseOptimizedPairs decodes the provider's reply: an optional fenced code
// block around a JSON array of {index, content}. Every element must carry a
// numeric index and a string content; anything else is a protocol violation.
func parseOptimizedPairs(raw string) ([]models.CaptionContent, error) {
	body := strings.TrimSpace(raw)
	if i := strings.Index(body, "```"); i >= 0 {
		body = body[i+3:]
		if j := strings.Index(body, "```"); j >= 0 {
			body = body[:j]
		}
	}
	start := strings.IndexByte(body, '[')
	end := strings.LastIndexByte(body, ']')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	body = body[start : end+1]

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elems); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	out := make([]models.CaptionContent, 0, len(elems))
	for i, el := range elems {
		var p struct {
			Index   *int    `json:"index"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(el, &p); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if p.Index == nil {
			return nil, fmt.Errorf("element %d: missing or non-numeric index", i)
		}
		if p.Content == nil {
			return nil, fmt.Errorf("element %d: missing content", i)
		}
		out = append(out, models.CaptionContent{Index: *p.Index, Content: *p.Content})
	}
	return out, nil
}

// classifyUpstreamError separates credential rejections from other upstream
// failures so a client can prompt for a new key instead of retrying blindly.
func classifyUpstreamError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"api key", "api_key", "unauthorized", "unauthenticated", "permission", "401", "403"} {
		if strings.Contains(msg, marker) {
			return utils.E(utils.CodeUpstreamAuth, op, "optimizer rejected the API key", err)
		}
	}
	return utils.E(utils.CodeUnavailable, op, "optimizer request failed", err)
}
