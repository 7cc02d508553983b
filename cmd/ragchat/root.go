package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragchat/internal/assistant"
	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/credential"
	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/llm"
	"ragchat/internal/loader"
	"ragchat/internal/logger"
	"ragchat/internal/memory"
	"ragchat/internal/repl"
	"ragchat/internal/retriever"
	"ragchat/internal/service"
	"ragchat/internal/summarizer"
	"ragchat/internal/tui"
	"ragchat/internal/vectorstore"
)

// app carries the process streams and flag values so the command can be
// driven from tests.
type app struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	lookup     credential.LookupFunc
	isTerminal func() bool
	runTUI     func(ctx context.Context, m tea.Model) error

	cfgPath string
	envFile string
	keyEnv  string
	useTUI  bool
	verbose bool
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragchat [document]",
		Short: "Chat with a document using retrieval augmented generation",
		Long: `ragchat loads a document, splits it into overlapping segments, embeds them
into a vector index and answers questions about it with a hosted chat model.

The chat API key is read from the GEMINI_KEY environment variable (or the
variable named by --key-env). With --env-file the key may also come from a
dotenv file; variables already set in the environment win. Type "exit" to
end the session.

Example usage:
  ragchat                       # use document.path from the config
  ragchat docs/manual.pdf       # chat with another document
  ragchat --tui notes.docx      # full-screen interface`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args)
		},
	}
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.Flags().StringVar(&a.cfgPath, "config", "", "config file (default is ./config.yaml, then ~/.config/ragchat/config.yaml)")
	cmd.Flags().StringVar(&a.envFile, "env-file", "", "dotenv file to read the API key from (e.g. .env)")
	cmd.Flags().StringVar(&a.keyEnv, "key-env", credential.DefaultEnv, "environment variable holding the chat API key")
	cmd.Flags().BoolVar(&a.useTUI, "tui", false, "run the full-screen terminal interface")
	cmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "print diagnostic output to stderr")
	return cmd
}

func (a *app) run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Nothing else may run before the key is known to be present. The only
	// file read allowed first is a dotenv file the user named explicitly.
	lookup := a.lookup
	if a.envFile != "" {
		values, err := godotenv.Read(a.envFile)
		if err != nil {
			return fmt.Errorf("read env file: %w", err)
		}
		lookup = credential.WithFallback(lookup, values)
	}
	apiKey, err := credential.Require(lookup, a.keyEnv)
	if err != nil {
		fmt.Fprintln(a.errOut, credential.Hint(a.keyEnv))
		return err
	}
	fmt.Fprintln(a.out, "API key detected. Initializing RAG...")

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) == 1 {
		cfg.Document.Path = args[0]
	}
	logger.SetOutput(a.errOut)
	logger.SetVerbose(a.verbose || cfg.Logging.Verbose)
	logger.Debug("config: embedder=%s store=%s chat=%s/%s", cfg.Embedder.Type, cfg.VectorStore.Type, cfg.Chat.Provider, cfg.Chat.Model)

	ch, err := newChunker(cfg.Chunker)
	if err != nil {
		return err
	}
	docLoader := loader.New()
	logger.Info("formats: %s; segments of %d characters, %d overlap", strings.Join(docLoader.Formats(), ", "), ch.MaxChars(), ch.Overlap())
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return err
	}
	store, err := vectorstore.New(cfg.VectorStore)
	if err != nil {
		return err
	}
	sum, err := newSummarizer(cfg.Summarizer)
	if err != nil {
		return err
	}
	chat, err := llm.New(cfg.Chat, apiKey)
	if err != nil {
		return err
	}

	svc := service.NewRAGService(docLoader, ch, emb, store, sum, cfg.Summarizer.MaxSentences).
		WithBatchSize(cfg.Embedder.BatchSize)
	var bar *progressbar.ProgressBar
	report, err := svc.Ingest(ctx, cfg.Document.Path, func(done, total int) {
		// the bar would be torn apart by interleaved diagnostics
		if logger.IsVerbose() {
			logger.Debug("embedded %d/%d segments", done, total)
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(a.errOut),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(a.errOut)
				}),
			)
		}
		_ = bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Fprintln(a.out, "Document loaded successfully.")
	fmt.Fprintf(a.out, "Number of segments: %d\n", report.Segments)
	fmt.Fprintf(a.out, "Embeddings stored in %s.\n", storeLabel(cfg.VectorStore))

	asst := assistant.New(
		retriever.New(emb, store, cfg.Retriever.MaxResults, cfg.Retriever.MinScore),
		chat,
		memory.NewWindow(cfg.Memory.MaxTurns),
		assistant.Options{SystemPrompt: cfg.Chat.SystemPrompt, Temperature: *cfg.Chat.Temperature},
	)
	header := fmt.Sprintf("%s  ·  %d segments  ·  %s", report.Document.Title, report.Segments, asst.ModelName())

	if a.useTUI {
		if a.isTerminal != nil && a.isTerminal() {
			runTUI := a.runTUI
			if runTUI == nil {
				runTUI = runProgram
			}
			if err := runTUI(ctx, tui.New(ctx, asst, header, report.Summary)); err != nil {
				return err
			}
			fmt.Fprintln(a.out, repl.ClosingMessage)
			return nil
		}
		fmt.Fprintln(a.errOut, "--tui needs an interactive terminal; using the line interface")
	}

	fmt.Fprintf(a.out, "RAG assistant ready! (%s)\n", asst.ModelName())
	if report.Summary != "" {
		fmt.Fprintf(a.out, "Document digest: %s\n", report.Summary)
	}
	fmt.Fprintf(a.out, "Type %q to quit.\n\n", repl.ExitCommand)
	return repl.New(a.in, a.out, a.errOut, asst).Run(ctx)
}

func (a *app) loadConfig() (*config.AppConfig, error) {
	if a.cfgPath != "" {
		return config.Load(a.cfgPath)
	}
	cfg, path, err := config.LoadDefault()
	if err == nil {
		logger.Debug("using config %s", path)
	}
	return cfg, err
}

func runProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func newChunker(cfg config.ChunkerConfig) (*chunker.RecursiveChunker, error) {
	switch cfg.Type {
	case "recursive", "":
		return chunker.NewRecursiveChunker(cfg.MaxChars, cfg.OverlapChars), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func newSummarizer(cfg config.SummarizerConfig) (domain.Summarizer, error) {
	switch cfg.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Type)
	}
}

func storeLabel(cfg config.VectorStoreConfig) string {
	if cfg.Type == "qdrant" && cfg.Qdrant != nil {
		return fmt.Sprintf("Qdrant collection %q", cfg.Qdrant.Collection)
	}
	return "memory"
}
