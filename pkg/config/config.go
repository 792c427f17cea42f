package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Kakao struct {
		APIKey    string  `yaml:"api_key"`
		Endpoint  string  `yaml:"endpoint"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"kakao"`

	Retriever struct {
		ShelterVectorK         int     `yaml:"shelter_vector_k"`
		GuidelineVectorK       int     `yaml:"guideline_vector_k"`
		ShelterVectorWeight    float64 `yaml:"shelter_vector_weight"`
		ShelterLexicalWeight   float64 `yaml:"shelter_lexical_weight"`
		GuidelineVectorWeight  float64 `yaml:"guideline_vector_weight"`
		GuidelineLexicalWeight float64 `yaml:"guideline_lexical_weight"`
	} `yaml:"retriever"`

	Checkpoint struct {
		Backend string `yaml:"backend"` // memory | sqlite
		Path    string `yaml:"path"`
	} `yaml:"checkpoint"`

	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/shelterbot/config.yaml"),
			"/etc/shelterbot/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4o-mini"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "documents"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 1536
	}

	if config.Kakao.RateLimit == 0 {
		config.Kakao.RateLimit = 5.0
	}

	if config.Retriever.ShelterVectorK == 0 {
		config.Retriever.ShelterVectorK = 5
	}
	if config.Retriever.GuidelineVectorK == 0 {
		config.Retriever.GuidelineVectorK = 3
	}
	if config.Retriever.ShelterVectorWeight == 0 {
		config.Retriever.ShelterVectorWeight = 0.6
	}
	if config.Retriever.ShelterLexicalWeight == 0 {
		config.Retriever.ShelterLexicalWeight = 0.4
	}
	if config.Retriever.GuidelineVectorWeight == 0 {
		config.Retriever.GuidelineVectorWeight = 0.7
	}
	if config.Retriever.GuidelineLexicalWeight == 0 {
		config.Retriever.GuidelineLexicalWeight = 0.3
	}

	if config.Checkpoint.Backend == "" {
		config.Checkpoint.Backend = "memory"
	}
	if config.Checkpoint.Path == "" {
		config.Checkpoint.Path = "checkpoints.db"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8001"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if key := os.Getenv("KAKAO_REST_API_KEY"); key != "" {
		config.Kakao.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}
