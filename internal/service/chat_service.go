package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/llm"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/rs/zerolog/log"
)

const systemPromptTemplate = `You are a professional supply-chain data analysis assistant. Your job is to help the user understand supply-chain data and analysis results.

Current context:
%s
Answer with clear, professional analysis and recommendations.`

// ChatService runs assistant replies in the background, one per session at a time.
type ChatService struct {
	client  llm.Client
	timeout time.Duration
	now     func() time.Time

	wg sync.WaitGroup
}

func NewChatService(client llm.Client, timeout time.Duration) *ChatService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatService{client: client, timeout: timeout, now: time.Now}
}

// Send records the user message and starts the reply. It returns ErrChatBusy
// while a previous reply for the same session is still running.
func (s *ChatService) Send(sess *session.Session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}
	if !sess.TryBeginChat() {
		return ErrChatBusy
	}

	sess.AppendChat(domain.ChatMessage{Role: domain.RoleUser, Content: text, At: s.now()})
	messages := s.buildMessages(sess)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sess.EndChat()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		reply := s.complete(ctx, sess.ID, messages)
		sess.AppendChat(domain.ChatMessage{Role: domain.RoleAssistant, Content: reply, At: s.now()})
	}()
	return nil
}

// Wait blocks until every running reply has finished.
func (s *ChatService) Wait() {
	s.wg.Wait()
}

func (s *ChatService) complete(ctx context.Context, sessionID string, messages []llm.Message) string {
	start := s.now()
	reply, err := s.client.Complete(ctx, messages)
	if err != nil && !errors.Is(err, llm.ErrTimeout) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", llm.ErrTimeout, err)
	}
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Str("provider", s.client.Name()).Msg("chat: completion failed")
		return llm.Diagnose(err, s.endpoint())
	}
	log.Debug().Str("session", sessionID).Dur("took", s.now().Sub(start)).Msg("chat: reply ready")
	return reply
}

func (s *ChatService) endpoint() string {
	if e, ok := s.client.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return s.client.Name()
}

func (s *ChatService) buildMessages(sess *session.Session) []llm.Message {
	history := sess.ChatHistory()
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    string(domain.RoleSystem),
		Content: fmt.Sprintf(systemPromptTemplate, PageContext(sess)),
	})
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		messages = append(messages, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// PageContext describes what the user is looking at.
func PageContext(sess *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current page: %s\n", sess.Page())

	ds, err := sess.Dataset()
	if err != nil {
		return b.String()
	}
	fmt.Fprintf(&b, "Dataset: %d rows\n", ds.Len())
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(ds.Schema.Columns, ", "))

	if ds.Len() > 0 {
		kpi := analytics.Summarize(ds.Records)
		insight := analytics.BuildInsight(kpi.BiasPct/100, "")
		fmt.Fprintf(&b, "Overall forecast bias: %+.1f%% (%s)\n", kpi.BiasPct, insight.Diagnosis)
	}
	return b.String()
}
