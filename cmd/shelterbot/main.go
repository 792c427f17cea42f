package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/pkg/agent"
	cfgPkg "github.com/shelternet/shelterbot/pkg/config"
	"github.com/shelternet/shelterbot/pkg/geocode"
	"github.com/shelternet/shelterbot/pkg/ingest"
	"github.com/shelternet/shelterbot/pkg/llm"
	"github.com/shelternet/shelterbot/pkg/retriever"
	"github.com/shelternet/shelterbot/pkg/store"
	"github.com/shelternet/shelterbot/server"
)

type flags struct {
	configPath    string
	ingest        bool
	shelterCSV    string
	guidelinesDir string
	chat          bool
	port          string
}

func main() {
	f := parseFlags()

	if err := run(f); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() flags {
	var f flags

	flag.StringVar(&f.configPath, "config", "", "Path to config file")
	flag.BoolVar(&f.ingest, "ingest", false, "Ingest shelter and guideline data, then exit")
	flag.StringVar(&f.shelterCSV, "shelter-csv", "", "Path to the civil-defense shelter CSV export")
	flag.StringVar(&f.guidelinesDir, "guidelines-dir", "", "Directory of disaster guideline JSON files")
	flag.BoolVar(&f.chat, "chat", false, "Run an interactive terminal chat instead of the server")
	flag.StringVar(&f.port, "port", "", "HTTP port (overrides config)")
	flag.Parse()

	return f
}

func run(f flags) error {
	config, err := cfgPkg.LoadConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.port != "" {
		config.Server.Port = f.port
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	ctx := context.Background()

	client, err := llm.NewWithConfig(llm.ClientConfig{
		Model:          config.LLM.Model,
		EmbeddingModel: config.LLM.EmbeddingModel,
		Token:          config.LLM.APIKey,
		BaseURL:        config.LLM.BaseURL,
		Temperature:    config.LLM.Temperature,
		MaxTokens:      config.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize LLM client: %v", err)
	}

	vectorStore, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
		VectorDim:  config.Database.VectorDim,
	}, client)
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	if f.ingest {
		return runIngest(ctx, f, vectorStore)
	}

	shelterHybrid, err := retriever.NewHybrid(ctx, vectorStore, models.TypeShelter,
		config.Retriever.ShelterVectorK,
		config.Retriever.ShelterVectorWeight,
		config.Retriever.ShelterLexicalWeight)
	if err != nil {
		return fmt.Errorf("failed to build shelter retriever: %v", err)
	}

	guidelineHybrid, err := retriever.NewHybrid(ctx, vectorStore, models.TypeGuideline,
		config.Retriever.GuidelineVectorK,
		config.Retriever.GuidelineVectorWeight,
		config.Retriever.GuidelineLexicalWeight)
	if err != nil {
		return fmt.Errorf("failed to build guideline retriever: %v", err)
	}

	geocoder := geocode.NewWithConfig(geocode.ClientConfig{
		APIKey:    config.Kakao.APIKey,
		Endpoint:  config.Kakao.Endpoint,
		RateLimit: config.Kakao.RateLimit,
	})

	rewriter := agent.NewQueryRewriter(client.Model())
	classifier := agent.NewIntentClassifier(client.Model())
	toolbox := agent.NewToolbox(vectorStore, geocoder, shelterHybrid, guidelineHybrid, rewriter, client.Creative())

	var saver agent.Checkpointer
	if config.Checkpoint.Backend == "sqlite" {
		sqliteSaver, err := agent.NewSQLiteSaver(config.Checkpoint.Path)
		if err != nil {
			return fmt.Errorf("failed to open checkpoint store: %v", err)
		}
		defer sqliteSaver.Close()
		saver = sqliteSaver
	} else {
		saver = agent.NewMemorySaver()
	}

	graph := agent.NewGraph(client.Model(), classifier, rewriter, toolbox, saver)

	if f.chat {
		return runChat(ctx, graph)
	}

	srv := server.New(server.Config{
		Port:           config.Server.Port,
		AllowedOrigins: config.Server.AllowedOrigins,
	}, graph, toolbox, vectorStore)

	return srv.ListenAndServe()
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// runIngest loads the shelter CSV and the guideline JSON files into the
// vector store, embedding as it goes.
func runIngest(ctx context.Context, f flags, vectorStore *store.VectorStore) error {
	var docs []models.Document

	if f.shelterCSV != "" {
		file, err := os.Open(f.shelterCSV)
		if err != nil {
			return fmt.Errorf("failed to open shelter CSV: %v", err)
		}
		shelters, err := ingest.SheltersFromCSV(file)
		file.Close()
		if err != nil {
			return err
		}
		color.Green("✓ Parsed %d shelters from %s", len(shelters), f.shelterCSV)
		docs = append(docs, shelters...)
	}

	if f.guidelinesDir != "" {
		paths, err := filepath.Glob(filepath.Join(f.guidelinesDir, "*.json"))
		if err != nil {
			return fmt.Errorf("failed to list guideline files: %v", err)
		}
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %v", path, err)
			}
			guidelines, err := ingest.GuidelinesFromJSON(filepath.Base(path), data)
			if err != nil {
				return err
			}
			color.Green("✓ Parsed %d guideline sections from %s", len(guidelines), filepath.Base(path))
			docs = append(docs, guidelines...)
		}
	}

	if len(docs) == 0 {
		return fmt.Errorf("nothing to ingest: pass -shelter-csv and/or -guidelines-dir")
	}

	bar := getProgressBar(len(docs), "💾 Embedding and storing documents...")
	batchSize := 50
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := vectorStore.Store(ctx, docs[i:end]); err != nil {
			return fmt.Errorf("failed to store batch: %v", err)
		}
		bar.Add(end - i)
	}
	bar.Finish()
	color.Green("\n✓ Ingested %d documents", len(docs))
	return nil
}

// runChat is a terminal chat loop against the full agent pipeline,
// sharing one conversation thread for the session.
func runChat(ctx context.Context, graph *agent.Graph) error {
	color.Cyan("\n대피소 챗봇입니다. 질문을 입력하세요 (종료: exit)")

	threadID := uuid.NewString()
	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		result, err := graph.Run(ctx, threadID, query)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		assistantPrompt("Assistant: %s\n", result.Response)
	}

	return nil
}
