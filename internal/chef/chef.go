// Package chef is the per-recipe cooking assistant. Each recipe has its own persisted
// transcript, seeded with a greeting.
package chef

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chefbook/internal/docstore"
	"chefbook/internal/llm"
	"chefbook/internal/logging"
	"chefbook/internal/metrics"
	"chefbook/internal/profile"
	"chefbook/internal/recipe"
	"chefbook/internal/shared"
)

//go:embed chef_prompt.md
var chefPrompt string

var promptTemplate = template.Must(template.New("Chef").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(chefPrompt))

// Fixed replies returned in place of a model answer.
const (
	MsgMissingKey  = "Chef AI: Harap masukkan Gemini API Key Anda terlebih dahulu di Pengaturan (Ikon Profil di Home) untuk mengaktifkan fitur ini! 👨‍🍳🗝️"
	MsgRateLimited = "Maaf Chef, kuota API Gemini Anda telah habis atau sedang dibatasi (Error 429). 🛑\n\nSaran saya:\n1. Tunggu beberapa menit lalu coba lagi.\n2. Cek kuota Anda di Google AI Studio."
	MsgConnection  = "Maaf Chef, sepertinya ada gangguan koneksi dengan asisten AI. Silakan coba lagi nanti! 👨‍🍳🔌"
)

// greetingID is the id of the seeded first message.
const greetingID = "1"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one chat bubble.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Greeting is the seeded first message of a recipe's transcript.
func Greeting(recipeName string) Message {
	return Message{
		ID:     greetingID,
		Text:   fmt.Sprintf("Halo! Saya Chef AI. Ada yang bisa saya bantu dengan resep %s ini?", recipeName),
		Sender: SenderAI,
	}
}

// Assistant answers cooking questions about one recipe at a time.
type Assistant struct {
	store        *docstore.Store
	profile      *profile.Service
	newGenerator llm.Factory
	defaultKey   string
	metrics      metrics.Recorder
	logger       *zap.Logger
	newID        func() string
}

// New creates an Assistant. recorder may be nil.
func New(
	store *docstore.Store,
	prof *profile.Service,
	factory llm.Factory,
	defaultKey string,
	recorder metrics.Recorder,
	logger *zap.Logger,
) *Assistant {
	return &Assistant{
		store:        store,
		profile:      prof,
		newGenerator: factory,
		defaultKey:   defaultKey,
		metrics:      recorder,
		logger:       logging.OrNop(logger).Named("chef"),
		newID:        uuid.NewString,
	}
}

// Transcript returns the stored transcript of rec, or a fresh one holding only the
// greeting. ok is false when the stored transcript could not be read.
func (a *Assistant) Transcript(ctx context.Context, rec *recipe.Recipe) ([]Message, bool) {
	var messages []Message
	found, ok := a.store.Load(ctx, docstore.ChatHistoryKey(rec.ID), &messages)
	if !ok {
		return []Message{Greeting(rec.Name)}, false
	}
	if !found || len(messages) == 0 {
		return []Message{Greeting(rec.Name)}, true
	}
	return messages, true
}

// Send appends question and the answer to the transcript of rec and persists it.
// The answer is returned even when persisting failed; persisted reports the write.
// A blank question is ignored.
func (a *Assistant) Send(ctx context.Context, rec *recipe.Recipe, question string) (answer Message, persisted bool) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Message{}, false
	}

	messages, readOK := a.Transcript(ctx, rec)
	messages = append(messages, Message{ID: a.newID(), Text: question, Sender: SenderUser})

	answer = Message{ID: a.newID(), Text: a.Ask(ctx, rec, question), Sender: SenderAI}
	messages = append(messages, answer)

	if !readOK {
		// Never overwrite a transcript we could not read.
		return answer, false
	}
	return answer, a.store.Save(ctx, docstore.ChatHistoryKey(rec.ID), messages)
}

// Reset replaces the transcript of rec with the greeting alone.
func (a *Assistant) Reset(ctx context.Context, rec *recipe.Recipe) ([]Message, bool) {
	messages := []Message{Greeting(rec.Name)}
	return messages, a.store.Save(ctx, docstore.ChatHistoryKey(rec.ID), messages)
}

// HasCredential reports whether a usable model key is available.
func (a *Assistant) HasCredential(ctx context.Context) bool {
	return a.profile.ActiveAPIKey(ctx, a.defaultKey) != ""
}

// Ask answers question about rec. Failures come back as one of the fixed
// apology messages, never as an error.
func (a *Assistant) Ask(ctx context.Context, rec *recipe.Recipe, question string) string {
	apiKey := a.profile.ActiveAPIKey(ctx, a.defaultKey)
	if apiKey == "" {
		return MsgMissingKey
	}

	prompt, err := BuildPrompt(rec, a.profile.Preferences(ctx), question)
	if err != nil {
		a.logger.Error("failed to build prompt", zap.Error(err))
		return MsgConnection
	}

	gen, err := a.newGenerator(ctx, apiKey)
	if err != nil {
		a.logger.Warn("failed to create model client", zap.String("agent", shared.AgentChef), zap.Error(err))
		return MsgConnection
	}
	defer gen.Close()

	start := time.Now()
	resp, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		a.logger.Warn("chat generation failed",
			zap.String("agent", shared.AgentChef),
			zap.String("idMeal", rec.ID),
			zap.Error(err),
		)
		if llm.IsRateLimited(err) {
			return MsgRateLimited
		}
		return MsgConnection
	}
	a.record(ctx, shared.NewAgentMeta(shared.AgentChef, resp.Usage, start))

	return CleanAnswer(resp.Content)
}

func (a *Assistant) record(ctx context.Context, meta shared.AgentMeta) {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.RecordMeta(ctx, meta); err != nil {
		a.logger.Warn("failed to record metrics", zap.Error(err))
	}
}

// CleanAnswer strips the asterisk markers the model is told not to use.
func CleanAnswer(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "*", ""))
}

// BuildPrompt renders the grounding prompt for one question about rec.
func BuildPrompt(rec *recipe.Recipe, preferences, question string) (string, error) {
	var ingredients []string
	for _, ing := range rec.Ingredients() {
		ingredients = append(ingredients, ing.String())
	}

	data := struct {
		Name         string
		Category     string
		Area         string
		Ingredients  []string
		Instructions string
		Preferences  string
		Question     string
	}{
		Name:         rec.Name,
		Category:     rec.Category,
		Area:         rec.Area,
		Ingredients:  ingredients,
		Instructions: rec.Instructions,
		Preferences:  strings.TrimSpace(preferences),
		Question:     question,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render chef prompt: %w", err)
	}
	return buf.String(), nil
}
