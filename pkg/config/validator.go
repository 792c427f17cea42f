package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "OpenAI API key is required",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	// Validate Kakao config
	if c.Kakao.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "kakao.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Kakao.Endpoint != "" {
		if _, err := url.Parse(c.Kakao.Endpoint); err != nil {
			errors = append(errors, ValidationError{
				Field:   "kakao.endpoint",
				Message: "invalid Kakao endpoint URL",
			})
		}
	}

	// Validate Retriever config
	if c.Retriever.ShelterVectorK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retriever.shelter_vector_k",
			Message: "shelter_vector_k must be positive",
		})
	}

	if c.Retriever.GuidelineVectorK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retriever.guideline_vector_k",
			Message: "guideline_vector_k must be positive",
		})
	}

	for _, w := range []struct {
		field string
		value float64
	}{
		{"retriever.shelter_vector_weight", c.Retriever.ShelterVectorWeight},
		{"retriever.shelter_lexical_weight", c.Retriever.ShelterLexicalWeight},
		{"retriever.guideline_vector_weight", c.Retriever.GuidelineVectorWeight},
		{"retriever.guideline_lexical_weight", c.Retriever.GuidelineLexicalWeight},
	} {
		if w.value < 0 || w.value > 1 {
			errors = append(errors, ValidationError{
				Field:   w.field,
				Message: "weight must be between 0 and 1",
			})
		}
	}

	// Validate Checkpoint config
	if c.Checkpoint.Backend != "memory" && c.Checkpoint.Backend != "sqlite" {
		errors = append(errors, ValidationError{
			Field:   "checkpoint.backend",
			Message: fmt.Sprintf("unknown backend: %s", c.Checkpoint.Backend),
		})
	}

	if c.Checkpoint.Backend == "sqlite" && c.Checkpoint.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "checkpoint.path",
			Message: "path is required for the sqlite backend",
		})
	}

	return errors
}
