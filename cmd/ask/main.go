package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"ask/internal/chunker"
	"ask/internal/config"
	"ask/internal/domain"
	"ask/internal/embedding/openai"
	"ask/internal/embedding/tfidf"
	"ask/internal/generation/claude"
	"ask/internal/generation/openrouter"
	"ask/internal/retrieval/documents"
	"ask/internal/retrieval/web"
	"ask/internal/service"
	"ask/internal/summarizer"
	"ask/internal/tui"
	"ask/internal/vectorstore/memory"
	"ask/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, question string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ask/config.yaml if not provided)")
	flag.StringVar(&question, "q", "", "Ask a single question and print the answer instead of starting the TUI")
	flag.Parse()
	docPaths := flag.Args()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging, question != "")

	// Assemble retrieval sources. Slice order is the merge priority:
	// document results always precede web results.
	var sources []domain.Retriever
	summary := "Sources: web search."

	if len(docPaths) > 0 {
		docSource := buildDocumentSource(cfg, logger)
		corpusSummary, err := docSource.Ingest(docPaths)
		if err != nil {
			fatal(logger, err, "document ingest failed")
		}
		sources = append(sources, docSource)
		summary = corpusSummary
	}

	if webSource := buildWebSource(cfg, logger); webSource != nil {
		sources = append(sources, webSource)
	}

	generator := buildGenerator(cfg, logger)
	orchestrator := service.New(sources, generator, cfg.Retrieval.MaxSnippets, cfg.Retrieval.SnippetMaxChars, logger)

	if question != "" {
		runOnce(orchestrator, question)
		return
	}

	m := tui.New(orchestrator, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fatal(logger, err, "terminal interface failed")
	}
}

func buildDocumentSource(cfg *config.AppConfig, logger *log.Logger) *documents.Source {
	dc := cfg.Retrieval.Documents

	var emb domain.Embedder
	switch dc.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if dc.Embedder.OpenAI == nil {
			fatal(logger, nil, "openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   dc.Embedder.OpenAI.BaseURL,
			APIKeyEnv: dc.Embedder.OpenAI.APIKeyEnv,
			Model:     dc.Embedder.OpenAI.Model,
			Timeout:   time.Duration(dc.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			fatal(logger, err, "openai embedder init failed")
		}
		emb = client
	default:
		fatal(logger, nil, "unknown embedder: "+dc.Embedder.Type)
	}

	var store domain.VectorStore
	switch dc.VectorStore.Type {
	case "memory", "":
		store = memory.NewStorage()
	case "qdrant":
		if dc.VectorStore.Qdrant == nil {
			fatal(logger, nil, "qdrant config missing")
		}
		store = qdrant.NewStorage(qdrant.Config{
			URL:        dc.VectorStore.Qdrant.URL,
			APIKey:     dc.VectorStore.Qdrant.APIKey,
			Collection: dc.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(dc.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		fatal(logger, nil, "unknown vector store: "+dc.VectorStore.Type)
	}

	ch := chunker.NewSentenceChunker(dc.Chunker.SentencesPerChunk, dc.Chunker.OverlapSentences)
	sum := summarizer.NewFrequencySummarizer()
	return documents.NewSource(ch, emb, store, sum, dc.TopK, dc.SummaryMaxSentences, logger)
}

func buildWebSource(cfg *config.AppConfig, logger *log.Logger) domain.Retriever {
	wc := cfg.Retrieval.Web
	switch wc.Type {
	case "live", "":
		var primary *web.TavilyClient
		client, err := web.NewTavilyClient(web.TavilyConfig{
			BaseURL:    wc.Tavily.BaseURL,
			APIKeyEnv:  wc.Tavily.APIKeyEnv,
			MaxResults: wc.MaxResults,
			Timeout:    time.Duration(wc.Tavily.TimeoutSecs) * time.Second,
		})
		if err != nil {
			// Missing Tavily key is not fatal: the keyless fallback still works.
			logger.Warn().Err(err).Msg("primary web search unavailable, fallback only")
		} else {
			primary = client
		}
		fallback := web.NewDuckDuckGo(web.DuckDuckGoConfig{
			MaxResults: wc.MaxResults,
			Timeout:    time.Duration(wc.TimeoutSecs) * time.Second,
		})
		return web.NewSource(primary, fallback, logger)
	case "demo":
		return web.NewFixedSource(wc.MaxResults)
	case "off":
		return nil
	default:
		fatal(logger, nil, "unknown web source type: "+wc.Type)
		return nil
	}
}

func buildGenerator(cfg *config.AppConfig, logger *log.Logger) domain.Generator {
	switch cfg.Generation.Type {
	case "openrouter", "":
		client, err := openrouter.NewClient(openrouter.Config{
			BaseURL:     cfg.Generation.OpenRouter.BaseURL,
			APIKeyEnv:   cfg.Generation.OpenRouter.APIKeyEnv,
			Model:       cfg.Generation.OpenRouter.Model,
			AppURL:      cfg.Generation.OpenRouter.AppURL,
			Temperature: cfg.Generation.OpenRouter.Temperature,
			MaxTokens:   cfg.Generation.OpenRouter.MaxTokens,
			Timeout:     time.Duration(cfg.Generation.OpenRouter.TimeoutSecs) * time.Second,
		}, logger)
		if err != nil {
			fatal(logger, err, "generation backend init failed")
		}
		return client
	case "claude":
		client, err := claude.NewClient(claude.Config{
			APIKeyEnv:   cfg.Generation.Claude.APIKeyEnv,
			Model:       cfg.Generation.Claude.Model,
			Temperature: cfg.Generation.Claude.Temperature,
			MaxTokens:   cfg.Generation.Claude.MaxTokens,
			Timeout:     time.Duration(cfg.Generation.Claude.TimeoutSecs) * time.Second,
		}, logger)
		if err != nil {
			fatal(logger, err, "generation backend init failed")
		}
		return client
	default:
		fatal(logger, nil, "unknown generation backend: "+cfg.Generation.Type)
		return nil
	}
}

// runOnce answers a single question on the command line.
func runOnce(orchestrator *service.Orchestrator, question string) {
	result, err := orchestrator.Answer(context.Background(), question)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuestion):
			color.Red("Please provide a non-empty question.")
		case errors.Is(err, domain.ErrAuthFailed), errors.Is(err, domain.ErrMissingCredential):
			color.Red("Configuration error: %v", err)
		default:
			color.Red("Failed to synthesize an answer: %v", err)
		}
		os.Exit(1)
	}

	fmt.Println(result.Answer)
	if len(result.Citations) > 0 {
		fmt.Println()
		color.New(color.Bold, color.FgYellow).Println("Sources")
		for _, c := range result.Citations {
			color.New(color.FgCyan).Printf("[%d] ", c.Index)
			fmt.Printf("%s (%s)\n    %s\n", c.Title, c.OriginDomain, c.SourceLocation)
		}
	}
}

func newLogger(cfg config.LoggingConfig, console bool) *log.Logger {
	var writer log.Writer
	switch {
	case cfg.File != "":
		writer = &log.FileWriter{Filename: cfg.File, EnsureFolder: true}
	case console:
		writer = &log.ConsoleWriter{ColorOutput: true, Writer: os.Stderr}
	default:
		// TUI mode without a log file: writing to the terminal would
		// corrupt the interface.
		writer = &log.IOWriter{Writer: io.Discard}
	}
	return &log.Logger{
		Level:      log.ParseLevel(cfg.Level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

func fatal(logger *log.Logger, err error, msg string) {
	logger.Error().Err(err).Msg(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
