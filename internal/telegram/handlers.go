package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chefbook/internal/diary"
	"chefbook/internal/mealplan"
	"chefbook/internal/metrics"
	"chefbook/internal/recipe"
	"chefbook/internal/shopping"
)

const (
	msgStorageFailed  = "❌ Gagal menyimpan data. Coba lagi nanti."
	msgPlanFailed     = "Chef AI gagal membuat rencana. Pastikan API Key Anda sudah benar di Pengaturan!"
	msgNoRecipeOpen   = "Buka resep dulu dengan /recipe <id> untuk bertanya ke Chef AI."
	msgRecipeNotFound = "Resep tidak ditemukan."
	msgRecipeAPIDown  = "❌ Gagal menghubungi TheMealDB. Coba lagi nanti."

	maxMessageRunes = 4000
	maxSearchHits   = 10
)

const helpText = `👨‍🍳 *Chefbook*

/search <nama> - cari resep
/recipe <id> - buka resep dan tanya Chef AI
/close - tutup resep
/reset - mulai ulang obrolan resep
/plan - lihat rencana makan
/newplan [preferensi] - buat rencana baru
/shopping - daftar belanja
/clear - hapus item yang sudah dibeli
/diary - resep yang sudah dimasak
/achievements - lencana
/key <api-key> - simpan Gemini API Key
/prefs <teks> - simpan pantangan dan alergi
/timer <durasi> - timer memasak, mis. 15m
/stoptimer - hentikan timer
/metrics - pemakaian model`

func (b *Bot) lookup(ctx context.Context, chatID int64, id string) (*recipe.Recipe, bool) {
	if id == "" {
		b.sendText(chatID, "Format: /recipe <id>")
		return nil, false
	}
	rec, err := b.app.Recipes.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			b.sendText(chatID, msgRecipeNotFound)
		} else {
			b.logger.Warn("recipe lookup failed", zap.String("idMeal", id), zap.Error(err))
			b.sendText(chatID, msgRecipeAPIDown)
		}
		return nil, false
	}
	return rec, true
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, query string) {
	if query == "" {
		b.sendText(chatID, "Format: /search <nama resep>")
		return
	}
	recipes, err := b.app.Recipes.Search(ctx, query)
	if err != nil {
		b.logger.Warn("recipe search failed", zap.String("query", query), zap.Error(err))
		b.sendText(chatID, msgRecipeAPIDown)
		return
	}
	if len(recipes) == 0 {
		b.sendText(chatID, msgRecipeNotFound)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 %d resep ditemukan\n\n", len(recipes))
	for i, r := range recipes {
		if i == maxSearchHits {
			break
		}
		fmt.Fprintf(&sb, "• %s (%s) /recipe %s\n", r.Name, r.Category, r.ID)
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) handleOpenRecipe(ctx context.Context, chatID int64, id string) {
	rec, ok := b.lookup(ctx, chatID, id)
	if !ok {
		return
	}
	view := b.openView(rec)

	msg := tgbotapi.NewMessage(chatID, truncate(formatRecipe(rec, b.app.Diary.IsFinished(ctx, rec.ID)), maxMessageRunes))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Tambah ke belanja", "shop|"+rec.ID),
		tgbotapi.NewInlineKeyboardButtonData("✅ Selesai dimasak", "finish|"+rec.ID),
	))
	b.send(msg)

	transcript, _ := b.app.Chef.Transcript(ctx, view.rec)
	b.sendText(chatID, transcript[len(transcript)-1].Text)
}

// handleQuestion forwards free text to Chef AI for the open recipe. The answer
// is dropped if the user has moved on to another recipe by the time it arrives.
func (b *Bot) handleQuestion(ctx context.Context, chatID int64, text string) {
	view := b.currentView()
	if view == nil {
		b.sendText(chatID, msgNoRecipeOpen)
		return
	}
	question := strings.TrimSpace(text)
	if question == "" {
		return
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("failed to send chat action", zap.Error(err))
	}

	b.async(func() {
		view.sendMu.Lock()
		answer, persisted := b.app.Chef.Send(ctx, view.rec, question)
		view.sendMu.Unlock()
		if !persisted {
			b.logger.Warn("chat transcript not saved", zap.String("idMeal", view.rec.ID))
		}
		if !view.ticket.Apply(func() { b.sendText(chatID, answer.Text) }) {
			b.logger.Debug("dropped answer for closed recipe", zap.String("idMeal", view.rec.ID))
		}
	})
}

func (b *Bot) handleReset(ctx context.Context, chatID int64) {
	view := b.currentView()
	if view == nil {
		b.sendText(chatID, msgNoRecipeOpen)
		return
	}
	view.sendMu.Lock()
	messages, ok := b.app.Chef.Reset(ctx, view.rec)
	view.sendMu.Unlock()
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	b.sendText(chatID, messages[0].Text)
}

func (b *Bot) handleShowPlan(ctx context.Context, chatID int64) {
	view, err := b.app.LoadPlanner(ctx)
	if err != nil {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	if view.Plan.Len() == 0 {
		text := "Belum ada rencana makan. Ketik /newplan untuk membuatnya."
		if !view.HasCredential {
			text += "\nAtur API Key dulu dengan /key <api-key>."
		}
		b.sendText(chatID, text)
		return
	}
	b.sendMarkdown(chatID, formatPlan(view.Plan))
}

// handleGeneratePlan asks for a new plan in the background. Only the most
// recent request gets to store and show its result.
func (b *Bot) handleGeneratePlan(ctx context.Context, chatID int64, prefs string) {
	if !b.app.Planner.HasCredential(ctx) {
		b.sendText(chatID, "Atur API Key dulu dengan /key <api-key> untuk membuat rencana.")
		return
	}

	status, ok := b.sendMarkdown(chatID, "🧑‍🍳 *Sedang menyusun rencana...*")
	if !ok {
		return
	}
	ticket := b.planGuard.Begin()

	b.async(func() {
		var plan mealplan.Plan
		if prefs != "" {
			plan = b.app.Planner.Propose(ctx, prefs)
		} else {
			plan = b.app.Planner.ProposeFromProfile(ctx)
		}
		applied := ticket.Apply(func() {
			if plan != nil && !b.app.Planner.Commit(ctx, plan) {
				plan = nil
			}
			if plan == nil {
				b.editText(chatID, status.MessageID, "❌ "+msgPlanFailed)
				return
			}
			edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, formatPlan(plan))
			edit.ParseMode = tgbotapi.ModeMarkdown
			b.send(edit)
		})
		if !applied {
			b.logger.Info("dropped superseded plan")
		}
	})
}

func (b *Bot) handleShopping(ctx context.Context, chatID int64) {
	items, ok := b.app.Shopping.List(ctx)
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatShopping(items))
	if len(items) > 0 {
		msg.ReplyMarkup = shoppingKeyboard(items)
	}
	b.send(msg)
}

func (b *Bot) refreshShopping(ctx context.Context, chatID int64, messageID int) {
	items, ok := b.app.Shopping.List(ctx)
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	if len(items) == 0 {
		b.editText(chatID, messageID, formatShopping(items))
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, formatShopping(items), shoppingKeyboard(items)))
}

func (b *Bot) handleClearShopping(ctx context.Context, chatID int64) {
	removed, ok := b.app.Shopping.ClearCompleted(ctx)
	switch {
	case !ok:
		b.sendText(chatID, msgStorageFailed)
	case removed == 0:
		b.sendText(chatID, "Belum ada item yang selesai dibeli.")
	default:
		b.sendText(chatID, "Item yang sudah dibeli telah dihapus. ✨")
	}
}

func (b *Bot) handleAddIngredients(ctx context.Context, chatID int64, id string) {
	rec, ok := b.lookup(ctx, chatID, id)
	if !ok {
		return
	}
	added, ok := b.app.Shopping.AddIngredients(ctx, rec)
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	b.sendText(chatID, fmt.Sprintf("🛒 %d bahan dari %s ditambahkan ke daftar belanja.", added, rec.Name))
}

func (b *Bot) handleFinish(ctx context.Context, chatID int64, id string) {
	rec, ok := b.lookup(ctx, chatID, id)
	if !ok {
		return
	}
	created, ok := b.app.Diary.MarkFinished(ctx, rec.Summary())
	switch {
	case !ok:
		b.sendText(chatID, msgStorageFailed)
	case created:
		b.sendText(chatID, fmt.Sprintf("✅ %s dicatat di diary.", rec.Name))
	default:
		b.sendText(chatID, fmt.Sprintf("%s sudah ada di diary.", rec.Name))
	}
}

func (b *Bot) handleDiary(ctx context.Context, chatID int64) {
	log, ok := b.app.Diary.ListFinished(ctx)
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	if len(log) == 0 {
		b.sendText(chatID, "Belum ada resep yang dimasak.")
		return
	}
	var sb strings.Builder
	sb.WriteString("📖 Diary Memasak\n\n")
	for _, f := range log {
		day := f.FinishedAt
		if t, err := time.Parse(time.RFC3339Nano, f.FinishedAt); err == nil {
			day = t.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "• %s - %s (%s)\n", day, f.Name, f.Category)
	}
	b.sendText(chatID, truncate(sb.String(), maxMessageRunes))
}

func (b *Bot) handleAchievements(ctx context.Context, chatID int64) {
	achievements, ok := b.app.Diary.Achievements(ctx)
	if !ok {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	b.sendText(chatID, formatAchievements(achievements))
}

func (b *Bot) handleSaveKey(ctx context.Context, chatID int64, messageID int, key string) {
	// The key should not linger in the chat history.
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("failed to delete key message", zap.Error(err))
	}
	if key == "" {
		b.sendText(chatID, "API Key tidak boleh kosong!")
		return
	}
	if !b.app.Profile.SaveAPIKey(ctx, key) {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	b.sendText(chatID, "API Key berhasil disimpan! 🔑")
}

func (b *Bot) handleSavePrefs(ctx context.Context, chatID int64, prefs string) {
	if !b.app.Profile.SavePreferences(ctx, prefs) {
		b.sendText(chatID, msgStorageFailed)
		return
	}
	if prefs == "" {
		b.sendText(chatID, "Preferensi dihapus.")
		return
	}
	b.sendText(chatID, "Preferensi disimpan.")
}

func (b *Bot) handleTimer(chatID int64, arg string) {
	total, err := time.ParseDuration(arg)
	if err != nil || total <= 0 {
		b.sendText(chatID, "Format: /timer 15m")
		return
	}

	status, ok := b.sendText(chatID, fmt.Sprintf("⏲️ Timer %s dimulai.", total))
	if !ok {
		return
	}
	b.timer.Start(total,
		func(remaining time.Duration) {
			b.editText(chatID, status.MessageID, fmt.Sprintf("⏲️ Sisa waktu: %s", remaining.Round(time.Second)))
		},
		func() {
			b.sendText(chatID, "⏰ Waktu habis!")
		},
	)
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if b.app.Metrics == nil {
		sb.WriteString("_Butuh backend sqlite_\n")
	} else {
		usage, err := b.app.Metrics.GetDailyUsage(ctx, 7)
		if err != nil {
			b.logger.Warn("failed to fetch usage", zap.Error(err))
			b.sendText(chatID, "❌ Error fetching metrics.")
			return
		}
		if len(usage) == 0 {
			sb.WriteString("_No data yet_\n")
		}
		for _, d := range usage {
			fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
		}
	}

	health := metrics.GetSysHealth(b.app.DataPaths()...)
	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)

	b.sendMarkdown(chatID, sb.String())
}

func formatRecipe(rec *recipe.Recipe, finished bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🍽 %s\n%s · %s\n", rec.Name, rec.Category, rec.Area)
	if finished {
		sb.WriteString("✅ Sudah pernah dimasak\n")
	}
	sb.WriteString("\nBahan:\n")
	for _, ing := range rec.Ingredients() {
		fmt.Fprintf(&sb, "• %s\n", ing)
	}
	sb.WriteString("\nLangkah:\n")
	for i, step := range rec.Steps() {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	return sb.String()
}

func formatPlan(plan mealplan.Plan) string {
	var sb strings.Builder
	sb.WriteString("📅 *Rencana Makan Mingguan*\n")
	for _, day := range plan.OrderedDays() {
		fmt.Fprintf(&sb, "\n*%s*\n", day)
		for _, item := range plan[day] {
			fmt.Fprintf(&sb, "• %s: %s (_%s_)\n",
				item.MealType,
				tgbotapi.EscapeText(tgbotapi.ModeMarkdown, item.RecipeName),
				tgbotapi.EscapeText(tgbotapi.ModeMarkdown, item.Category),
			)
		}
	}
	return sb.String()
}

func formatShopping(items []shopping.Item) string {
	if len(items) == 0 {
		return "Daftar belanja kosong."
	}
	var sb strings.Builder
	done := 0
	sb.WriteString("🛒 Daftar Belanja\n\n")
	for _, item := range items {
		mark := "⬜"
		if item.Completed {
			mark = "✅"
			done++
		}
		line := strings.TrimSpace(item.Measure + " " + item.Name)
		if item.RecipeName != "" {
			line += " (" + item.RecipeName + ")"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, line)
	}
	fmt.Fprintf(&sb, "\n%d dari %d item sudah dibeli.", done, len(items))
	return truncate(sb.String(), maxMessageRunes)
}

func shoppingKeyboard(items []shopping.Item) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items))
	for _, item := range items {
		label := item.Name
		if item.Completed {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "toggle|"+item.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "remove|"+item.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatAchievements(achievements []diary.Achievement) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %d/%d lencana terbuka\n\n", diary.UnlockedCount(achievements), len(achievements))
	for _, a := range achievements {
		mark := "🔒"
		if a.Unlocked {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s - %s\n", mark, a.Title, a.Desc)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
