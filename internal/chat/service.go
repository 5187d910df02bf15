package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/medbookai/medbook/internal/booking"
	"github.com/medbookai/medbook/pkg/logging"
)

// Retriever is the document-retrieval collaborator used for general Q&A.
// An empty context with no error means nothing relevant was found.
type Retriever interface {
	Query(ctx context.Context, question string) (contextText string, sources []string, err error)
}

// BookingSummary is one row of a customer's booking history.
type BookingSummary struct {
	ID          string
	BookingType string
	Date        string
	Time        string
	Status      string
}

// Directory looks up existing bookings for the lookup intent.
type Directory interface {
	ListRecentByEmail(ctx context.Context, email string, limit int) ([]BookingSummary, error)
}

/// Conversation is the per-session chat state: the booking flow plus rolling
// memory. The session manager guarantees sequential access.
type Conversation struct {
	Flow   *booking.Flow
	Memory Memory

	awaitingLookupEmail bool
}

// NewConversation builds a fresh conversation bound to its collaborators.
func NewConversation(store booking.Store, notifier booking.Notifier, logger *logging.Logger, opts ...booking.FlowOption) *Conversation {
	return &Conversation{Flow: booking.NewFlow(store, notifier, logger, opts...)}
}

// Reply is the outcome of one processed turn.
type Reply struct {
	Text      string
	Intent    Intent
	FlowState booking.State
	Sources   []string
}

// Options tunes the chat service.
type Options struct {
	AppName      string
	ClinicName   string
	ClinicPhone  string
	Model        string
	MaxTokens    int32
	Temperature  float32
	ContextChars int
	LookupLimit  int
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.AppName == "" {
		opts.AppName = "MedBook AI"
	}
	if opts.ClinicName == "" {
		opts.ClinicName = "our clinic"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1024
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if opts.ContextChars == 0 {
		opts.ContextChars = 3000
	}
	if opts.LookupLimit == 0 {
		opts.LookupLimit = 5
	}
	return opts
}

// Service routes utterances by intent: booking turns to the flow, lookups to
// the directory, everything else to the retriever-augmented LLM. It holds no
// per-session state and is safe for concurrent use across sessions.
type Service struct {
	llm       LLMClient
	retriever Retriever
	directory Directory
	logger    *logging.Logger
	opts      Options
}

const fallbackReply = "I'm having trouble responding right now. You can still book an appointment by saying 'book an appointment', or try again in a moment."

var emailExtractPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// NewService builds the chat service. retriever and directory may be nil;
// the matching intents then degrade to plain LLM answers or an apology.
func NewService(llm LLMClient, retriever Retriever, directory Directory, logger *logging.Logger, opts Options) *Service {
	if llm == nil {
		panic("chat: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		llm:       llm,
		retriever: retriever,
		directory: directory,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

// Respond processes one user turn for a conversation and returns the reply.
// Every failure resolves to a conversational response; Respond never returns
// an error to the transport layer.
func (s *Service) Respond(ctx context.Context, conv *Conversation, input string) Reply {
	intent := DetectIntent(input, conv.Flow.IsActive())
	conv.Memory.Add(ChatRoleUser, input)

	// A pending lookup consumes the next turn if it carries an email.
	if conv.awaitingLookupEmail && intent != IntentBooking {
		conv.awaitingLookupEmail = false
		if emailExtractPattern.MatchString(input) {
			intent = IntentLookup
		}
	}

	var reply Reply
	reply.Intent = intent

	switch intent {
	case IntentGreeting:
		reply.Text = s.greeting()
	case IntentHelp:
		reply.Text = s.helpText()
	case IntentLookup:
		reply.Text = s.handleLookup(ctx, conv, input)
	case IntentBooking:
		reply.Text = conv.Flow.HandleInput(ctx, input)
	default:
		reply.Text, reply.Sources = s.handleGeneral(ctx, conv, input)
	}

	conv.Memory.Add(ChatRoleAssistant, reply.Text)
	reply.FlowState = conv.Flow.State()
	return reply
}

func (s *Service) greeting() string {
	return fmt.Sprintf("Hello! I'm %s, the booking assistant for %s. I can book an appointment, look up your existing bookings, or answer questions about the clinic. How can I help?",
		s.opts.AppName, s.opts.ClinicName)
}

func (s *Service) helpText() string {
	return strings.Join([]string{
		"Here's what I can do:",
		"- Book an appointment: say 'book an appointment'",
		"- Check your bookings: say 'check my appointments'",
		"- Answer questions about the clinic and its services",
		"You can say 'cancel' at any point during a booking.",
	}, "\n")
}

func (s *Service) handleLookup(ctx context.Context, conv *Conversation, input string) string {
	email := strings.ToLower(emailExtractPattern.FindString(input))
	if email == "" {
		conv.awaitingLookupEmail = true
		return "Sure, I can check your bookings. What's the email address you booked with?"
	}

	if s.directory == nil {
		return "Sorry, booking lookup isn't available right now."
	}

	bookings, err := s.directory.ListRecentByEmail(ctx, email, s.opts.LookupLimit)
	if err != nil {
		s.logger.Error("booking lookup failed", "email", email, "error", err)
		return "Sorry, I couldn't retrieve your bookings right now. Please try again in a moment."
	}
	if len(bookings) == 0 {
		return fmt.Sprintf("I couldn't find any bookings for %s.", email)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your recent bookings for %s:\n", email)
	for _, bk := range bookings {
		fmt.Fprintf(&b, "- [%s] %s on %s at %s (ID %s)\n", bk.Status, bk.BookingType, bk.Date, bk.Time, bk.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// handleGeneral answers with the LLM, grounded on retrieved document context
// when available. A provider failure triggers one retry without context
// before falling back to a canned reply.
func (s *Service) handleGeneral(ctx context.Context, conv *Conversation, input string) (string, []string) {
	var contextText string
	var sources []string
	if s.retriever != nil {
		text, srcs, err := s.retriever.Query(ctx, input)
		if err != nil {
			s.logger.Warn("document retrieval failed", "error", err)
		} else {
			contextText = truncate(text, s.opts.ContextChars)
			sources = srcs
		}
	}

	resp, err := s.llm.Complete(ctx, s.buildRequest(conv, contextText))
	if err != nil && contextText != "" {
		s.logger.Warn("llm completion with context failed, retrying without", "error", err)
		contextText = ""
		sources = nil
		resp, err = s.llm.Complete(ctx, s.buildRequest(conv, ""))
	}
	if err != nil {
		s.logger.Error("llm completion failed", "error", err)
		return fallbackReply, nil
	}

	text := resp.Text
	if len(sources) > 0 {
		text += "\n\nSources: " + strings.Join(sources, ", ")
	}
	return text, sources
}

func (s *Service) buildRequest(conv *Conversation, contextText string) LLMRequest {
	system := []string{fmt.Sprintf(
		"You are %s, a friendly appointment-booking assistant for %s. Be concise and helpful. If the user wants to book, tell them to say 'book an appointment'. Do not invent clinic policies.",
		s.opts.AppName, s.opts.ClinicName)}
	if contextText != "" {
		system = append(system, "Use the following clinic documents to answer when relevant:\n\n"+contextText)
	}
	return LLMRequest{
		Model:       s.opts.Model,
		System:      system,
		Messages:    conv.Memory.Window(),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
