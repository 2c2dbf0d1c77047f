// Command chatcli drives a widget conversation from the terminal. Replies
// come from a running API server (-api) or from the locally configured
// model, and lead submissions are printed instead of sent unless -submit
// is given.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fahimkhan-git/seher-ai-chat/internal/app/bootstrap"
	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	appconfig "github.com/fahimkhan-git/seher-ai-chat/internal/config"
	"github.com/fahimkhan-git/seher-ai-chat/internal/conversation"
	"github.com/fahimkhan-git/seher-ai-chat/internal/crm"
	"github.com/fahimkhan-git/seher-ai-chat/internal/submission"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widget"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	apiURL := flag.String("api", "", "base URL of a running API server for assistant replies")
	project := flag.String("project", cfg.DefaultProjectID, "project id")
	microsite := flag.String("microsite", "chatcli", "microsite name")
	send := flag.Bool("submit", false, "send the captured lead to the CRM")
	flag.Parse()

	logger := logging.New("warn")
	ctx := context.Background()

	var gateway assistant.Gateway
	if *apiURL != "" {
		gateway = assistant.NewHTTPGateway(*apiURL, cfg.AITimeout)
	} else {
		llm, model := bootstrap.BuildLLMClient(ctx, cfg, nil, logger)
		gateway = assistant.NewService(llm, model, logger)
	}

	var creator crm.Creator = printCreator{w: os.Stdout}
	if *send {
		creator = crm.NewClient(cfg.CRMBaseURL)
	}
	pipeline := submission.NewPipeline(creator, logger,
		submission.WithIPResolver(crm.NewIPLookup(cfg.IPLookupURL, cfg.IPLookupTimeout)),
	)
	defer pipeline.Wait()

	session := widget.NewSession(widget.Config{
		SessionID:     fmt.Sprintf("cli-%d", time.Now().Unix()),
		ProjectID:     *project,
		Microsite:     *microsite,
		ContextWindow: cfg.ContextWindow,
		AITimeout:     cfg.AITimeout,
	}, gateway, pipeline, widget.WithLogger(logger))

	if err := run(ctx, session, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *widget.Session, in io.Reader, out io.Writer) error {
	printMessages(out, s.Open(ctx).Appended)
	prompt(out, s)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return nil
		}
		outcome, err := apply(ctx, s, line)
		switch {
		case errors.Is(err, widget.ErrSubmitFailed):
			fmt.Fprintln(out, "!", widget.RetryMessage)
		case err != nil:
			fmt.Fprintln(out, "!", err)
		case outcome.ValidationError != nil:
			fmt.Fprintln(out, "!", outcome.ValidationError)
		}
		printMessages(out, outcome.Appended)
		prompt(out, s)
	}
	return scanner.Err()
}

// apply maps a typed line onto the action the current mode expects. In the
// option modes a number picks the listed option.
func apply(ctx context.Context, s *widget.Session, line string) (widget.Outcome, error) {
	theme := s.Theme()
	switch s.State().Mode {
	case widget.ModeCTA:
		if opt, ok := pick(theme.CTAOptions, line); ok {
			return s.SelectCTA(ctx, opt)
		}
	case widget.ModeBHK:
		if opt, ok := pick(theme.BHKOptions, line); ok {
			return s.SelectBHK(ctx, opt)
		}
	case widget.ModeLeadForm:
		name, number, _ := strings.Cut(line, ",")
		return s.SubmitLeadForm(ctx, strings.TrimSpace(name), strings.TrimSpace(number))
	}
	return s.SubmitText(ctx, line)
}

func pick(options []string, line string) (string, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return "", false
	}
	return options[n-1], true
}

func prompt(out io.Writer, s *widget.Session) {
	theme := s.Theme()
	state := s.State()
	switch state.Mode {
	case widget.ModeCTA:
		printOptions(out, theme.CTAOptions)
	case widget.ModeBHK:
		printOptions(out, theme.BHKOptions)
	case widget.ModeLeadForm:
		fmt.Fprintln(out, "  (enter: name, phone)")
	case widget.ModePhone:
		fmt.Fprintf(out, "  (country %s)\n", state.SelectedCountry.DialCode)
	}
	fmt.Fprintf(out, "[%s] > ", state.Mode)
}

func printOptions(out io.Writer, options []string) {
	for i, opt := range options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
}

func printMessages(out io.Writer, msgs []conversation.Message) {
	for _, m := range msgs {
		if m.Kind == conversation.KindSystem {
			fmt.Fprintln(out, "bot:", m.Text)
		}
	}
}

// printCreator writes the CRM payload instead of sending it.
type printCreator struct {
	w io.Writer
}

func (p printCreator) CreateLead(_ context.Context, payload crm.Payload) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	fmt.Fprintln(p.w, "CRM payload (dry run):")
	return enc.Encode(payload)
}
