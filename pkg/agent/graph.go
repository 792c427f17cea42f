package agent

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"

	"github.com/shelternet/shelterbot/internal/models"
)

// completionTextThreshold is the minimum rune length of a tool's text
// response that counts as a complete answer on its own.
const completionTextThreshold = 50

// defaultMaxIterations bounds the agent ⇄ tools loop.
const defaultMaxIterations = 5

// Result is what one orchestrated turn produces.
type Result struct {
	Response       string
	Intent         Intent
	StructuredData *models.StructuredData
}

// Graph is the orchestration state machine: intent_classifier →
// query_rewrite → agent ⇄ tools, with per-thread memory behind a
// Checkpointer. All collaborators are injected at construction; the
// graph holds no global state.
type Graph struct {
	model         llms.Model
	classifier    *IntentClassifier
	rewriter      *QueryRewriter
	toolbox       *Toolbox
	saver         Checkpointer
	maxIterations int
}

func NewGraph(model llms.Model, classifier *IntentClassifier, rewriter *QueryRewriter, toolbox *Toolbox, saver Checkpointer) *Graph {
	if saver == nil {
		saver = NewMemorySaver()
	}
	return &Graph{
		model:         model,
		classifier:    classifier,
		rewriter:      rewriter,
		toolbox:       toolbox,
		saver:         saver,
		maxIterations: defaultMaxIterations,
	}
}

// answerComplete is the early-termination policy after a tools step: a
// non-nil structured payload or a sufficiently long text response is
// taken as a finished answer instead of looping back for another
// reasoning step. Kept as a named function so the heuristic can be
// replaced without restructuring the machine.
func answerComplete(structured *models.StructuredData, lastText string) bool {
	if structured != nil {
		return true
	}
	return utf8.RuneCountInString(lastText) > completionTextThreshold
}

// Run processes one user message in the given thread and returns the
// final response. Message history accumulates per thread; intent,
// rewritten query and structured data are recomputed fresh.
func (g *Graph) Run(ctx context.Context, threadID, message string) (*Result, error) {
	state, err := g.saver.Load(threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", threadID, err)
	}

	state.append(RoleHuman, message)
	state.StructuredData = nil

	// intent_classifier node
	classification := g.classifier.Classify(ctx, message)
	state.Intent = classification.Intent
	log.Printf("[agent] thread=%s intent=%s confidence=%.2f", threadID, classification.Intent, classification.Confidence)

	// query_rewrite node: a no-op echo for chat/knowledge intents
	if classification.Intent == IntentGeneralChat || classification.Intent == IntentGeneralKnowledge {
		state.RewrittenQuery = message
	} else {
		state.RewrittenQuery = g.rewriter.Rewrite(ctx, message).Vector
	}

	// agent ⇄ tools loop
	msgs := g.transcript(state)
	tools := g.toolbox.Definitions()

	var final string
	for i := 0; i < g.maxIterations; i++ {
		resp, err := g.model.GenerateContent(ctx, msgs, llms.WithTools(tools))
		if err != nil {
			return nil, fmt.Errorf("reasoning step failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("reasoning step returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			final = choice.Content
			break
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, tc := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, tc)
		}
		msgs = append(msgs, assistant)

		var lastText string
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			result := g.toolbox.Dispatch(ctx, tc.FunctionCall.Name, tc.FunctionCall.Arguments)
			// first non-nil structured payload of the step wins
			if result.StructuredData != nil && state.StructuredData == nil {
				state.StructuredData = result.StructuredData
			}
			lastText = result.Text

			msgs = append(msgs, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result.Text,
					},
				},
			})
		}

		if answerComplete(state.StructuredData, lastText) {
			final = lastText
			break
		}
	}

	if final == "" {
		final = "죄송합니다. 질문을 처리하지 못했습니다. 다시 시도해주세요."
	}

	state.append(RoleAI, final)
	if err := g.saver.Save(threadID, state); err != nil {
		return nil, fmt.Errorf("failed to save thread %s: %w", threadID, err)
	}

	return &Result{
		Response:       final,
		Intent:         state.Intent,
		StructuredData: state.StructuredData,
	}, nil
}

// transcript rebuilds the model-facing message list from the durable
// history, with the system prompt up front.
func (g *Graph) transcript(state *State) []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(state.Messages)+1)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	for _, turn := range state.Messages {
		role := llms.ChatMessageTypeHuman
		if turn.Role == RoleAI {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, turn.Text))
	}
	return msgs
}
