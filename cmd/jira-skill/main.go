package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jira-skill/internal/config"
	"jira-skill/internal/helpers"
	"jira-skill/internal/models"
	"jira-skill/internal/observability"
	"jira-skill/internal/server"
	"jira-skill/internal/services"
	"jira-skill/internal/speech"
)

var (
	configFile    string
	transcriptDir string
	tokenSubject  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "jira-skill",
		Short: "JIRA Service Desk voice skill",
		Long: `jira-skill answers spoken questions about a JIRA Service Desk: queue status,
overdue and urgent issues, the state of a single issue, and raising new issues.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path")

	// Intent command
	var intentCmd = &cobra.Command{
		Use:   "intent <IntentName> [responses...]",
		Short: "Run one intent",
		Long:  "Run a single intent. Extra arguments answer the skill's follow-up questions in order.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIntent,
	}
	rootCmd.AddCommand(intentCmd)

	// REPL command
	var replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Talk to the skill interactively",
		Long:  "Read intent names from stdin, one per line. Follow-up questions are answered on the next line.",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
	replCmd.Flags().StringVarP(&transcriptDir, "transcript", "t", "", "Save a transcript of the session to this directory")
	rootCmd.AddCommand(replCmd)

	// Check command
	var checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Test the JIRA connection",
		Long:  "Log in to JIRA with the configured credentials and list the visible projects",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	rootCmd.AddCommand(checkCmd)

	// Serve command
	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP intent webhook",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)

	// Token command
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the webhook",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "speaker", "Name of the device the token is for")
	rootCmd.AddCommand(tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, logger, nil
}

func runIntent(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	skill := services.NewSkill(logger)
	session := services.NewSession(cfg, services.NewConnectionManager(logger), logger)
	conv := speech.NewTerminal(os.Stdin, cmd.OutOrStdout(), args[1:]...)

	return skill.Handle(ctx, args[0], session, conv)
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	in := bufio.NewReader(os.Stdin)
	skill := services.NewSkill(logger)
	connector := services.NewConnectionManager(logger)
	session := services.NewSession(cfg, connector, logger)
	conv := speech.NewTerminal(in, out)
	transcript := &models.Transcript{Session: session.ID}
	interactive := helpers.IsTerminal()

	helpers.PrintTitle("JIRA Service Desk skill")
	helpers.PrintInfo("Intents: %s", strings.Join(skill.Intents(), ", "))
	helpers.PrintInfo("Type 'reload' to re-read %s, 'quit' to leave", configFile)

	for ctx.Err() == nil {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		intent := strings.TrimSpace(line)

		switch {
		case intent == "" && errors.Is(err, io.EOF):
			return saveTranscript(transcript)
		case intent == "":
			continue
		case intent == "quit" || intent == "exit":
			return saveTranscript(transcript)
		case intent == "reload":
			reloaded, loadErr := config.LoadConfig(configFile)
			if loadErr != nil {
				helpers.PrintError("Failed to reload config: %v", loadErr)
				continue
			}
			cfg = reloaded
			session = services.NewSession(cfg, connector, logger)
			helpers.PrintSuccess("Configuration reloaded")
			continue
		}

		started := time.Now()
		if handleErr := skill.Handle(ctx, intent, session, conv); handleErr != nil {
			helpers.PrintError("%v", handleErr)
		}
		spoken, shown := conv.Drain()
		transcript.Utterances = append(transcript.Utterances, models.Utterance{
			ID:        uuid.NewString(),
			Intent:    intent,
			Speech:    spoken,
			Display:   shown,
			StartedAt: started,
		})
		if interactive {
			helpers.PrintSeparator()
		}

		if errors.Is(err, io.EOF) {
			return saveTranscript(transcript)
		}
	}
	return saveTranscript(transcript)
}

func saveTranscript(transcript *models.Transcript) error {
	if transcriptDir == "" || len(transcript.Utterances) == 0 {
		return nil
	}
	transcript.SavedAt = time.Now()
	path, err := helpers.SaveTimestampedJSON(transcript, transcriptDir, "transcript")
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	helpers.PrintSuccess("Transcript saved to: %s", path)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Jira.RequestTimeout()*2)
	defer cancel()

	helpers.PrintTitle("Testing JIRA Connection")
	helpers.PrintInfo("Server: %s", cfg.Jira.BaseURL)

	conv := speech.NewTerminal(os.Stdin, cmd.OutOrStdout())
	service := services.NewJiraService(&cfg.Jira, services.NewConnectionManager(logger), logger)
	if _, err := service.TestConnection(ctx, conv); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, services.NewSkill(logger), logger)
	return srv.Run(ctx)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	tokens := server.NewTokenManager(cfg.Server.JWTSecret, cfg.Server.TokenTTL())
	token, expiresAt, err := tokens.GenerateToken(tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	helpers.PrintInfo("Token for %s, valid until %s", tokenSubject, expiresAt.Format(time.RFC3339))
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
