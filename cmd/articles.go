package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/publisher"
)

const cliActor = "cli"

var errReadOnly = errors.New("article store is read-only (access.read_only)")

var articleFlags struct {
	status    string
	search    string
	category  string
	limit     int
	offset    int
	format    string
	title     string
	body      string
	bodyFile  string
	summary   string
	tags      string
	thumbnail string
	publish   bool
	topic     string
	style     string
	save      bool
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Manage blog articles",
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	Args:  cobra.NoArgs,
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		f := articleFlags
		if f.search != "" || f.category != "" || f.offset > 0 {
			page, err := m.store.FetchPage(ctx, f.offset, content.Filter{
				Search:        f.search,
				Category:      f.category,
				PublishedOnly: content.ParseStatus(f.status) == content.StatusPublished,
				Limit:         f.limit,
			})
			if err != nil {
				return err
			}
			if f.format == "json" {
				return printJSON(page)
			}
			printArticles(page.Items)
			if page.HasMore {
				fmt.Printf("\nMore results: --offset %d\n", page.NextOffset)
			}
			return nil
		}

		articles, err := m.store.List(ctx, content.ParseStatus(f.status))
		if err != nil {
			return err
		}
		if f.format == "json" {
			return printJSON(articles)
		}
		printArticles(articles)
		return nil
	}),
}

var articlesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an article",
	Args:  cobra.ExactArgs(1),
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		a, err := m.store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if articleFlags.format == "json" {
			return printJSON(a)
		}
		printArticle(a)
		return nil
	}),
}

var articlesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an article",
	Args:  cobra.NoArgs,
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		a := &content.Article{}
		if err := applyArticleFlags(a, nil); err != nil {
			return err
		}
		if err := m.create(ctx, a); err != nil {
			return err
		}
		fmt.Printf("Created article %s\n", a.ID)
		return nil
	}),
}

var articlesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an article; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArticles(func(ctx context.Context, m *articleManager, args []string) error {
			a, err := m.store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := applyArticleFlags(a, cmd.Flags().Changed); err != nil {
				return err
			}
			if err := m.update(ctx, a); err != nil {
				return err
			}
			fmt.Printf("Updated article %s\n", a.ID)
			return nil
		})(cmd, args)
	},
}

var articlesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article",
	Args:  cobra.ExactArgs(1),
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		if err := m.delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted article %s\n", args[0])
		return nil
	}),
}

var articlesPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish an article",
	Args:  cobra.ExactArgs(1),
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		return m.setPublished(ctx, args[0], true)
	}),
}

var articlesUnpublishCmd = &cobra.Command{
	Use:   "unpublish <id>",
	Short: "Move an article back to drafts",
	Args:  cobra.ExactArgs(1),
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		return m.setPublished(ctx, args[0], false)
	}),
}

var articlesDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate an article draft with Claude",
	Args:  cobra.NoArgs,
	RunE: withArticles(func(ctx context.Context, m *articleManager, args []string) error {
		if m.engine == nil {
			return fmt.Errorf("AI is not configured; set ANTHROPIC_API_KEY")
		}
		f := articleFlags

		draft, err := m.engine.DraftArticle(ctx, ai.DraftRequest{Topic: f.topic, Category: f.category, Style: f.style})
		if err != nil {
			return err
		}
		if err := m.auditor.LogDraft(cliActor, strings.TrimSpace(f.topic), draft.Title); err != nil {
			m.logger.Warn("audit write failed", zap.Error(err))
		}

		if !f.save {
			if f.format == "json" {
				return printJSON(draft)
			}
			fmt.Printf("Judul:     %s\nRingkasan: %s\nTag:       %s\n\n%s\n", draft.Title, draft.Summary, draft.Tags, draft.Content)
			return nil
		}

		category, err := content.ParseCategory(f.category)
		if err != nil {
			category = content.CategoryGeneral
		}
		a := &content.Article{
			Title:    draft.Title,
			Content:  draft.Content,
			Summary:  draft.Summary,
			Category: category,
			Tags:     draft.TagList(),
		}
		if err := m.create(ctx, a); err != nil {
			return err
		}
		fmt.Printf("Saved draft as article %s\n", a.ID)
		return nil
	}),
}

func init() {
	pf := articlesCmd.PersistentFlags()
	pf.StringVar(&articleFlags.format, "format", "table", "output format: table or json")

	lf := articlesListCmd.Flags()
	lf.StringVar(&articleFlags.status, "status", "all", "all, published or draft")
	lf.StringVar(&articleFlags.search, "search", "", "match title, summary or an exact tag")
	lf.StringVar(&articleFlags.category, "category", "", "filter by category")
	lf.IntVar(&articleFlags.limit, "limit", content.DefaultPageSize, "page size when searching")
	lf.IntVar(&articleFlags.offset, "offset", 0, "page offset when searching")

	for _, c := range []*cobra.Command{articlesCreateCmd, articlesUpdateCmd} {
		f := c.Flags()
		f.StringVar(&articleFlags.title, "title", "", "article title")
		f.StringVar(&articleFlags.body, "content", "", "article body")
		f.StringVar(&articleFlags.bodyFile, "content-file", "", "read the article body from a file")
		f.StringVar(&articleFlags.summary, "summary", "", "short summary")
		f.StringVar(&articleFlags.category, "category", "", "category: "+categoryNames())
		f.StringVar(&articleFlags.tags, "tags", "", "comma-separated tags")
		f.StringVar(&articleFlags.thumbnail, "thumbnail", "", "thumbnail image URL")
		f.BoolVar(&articleFlags.publish, "publish", false, "publish immediately")
	}

	df := articlesDraftCmd.Flags()
	df.StringVar(&articleFlags.topic, "topic", "", "article topic (required)")
	df.StringVar(&articleFlags.category, "category", "", "category hint")
	df.StringVar(&articleFlags.style, "style", "", "writing style")
	df.BoolVar(&articleFlags.save, "save", false, "store the draft as an unpublished article")
	_ = articlesDraftCmd.MarkFlagRequired("topic")

	articlesCmd.AddCommand(articlesListCmd, articlesShowCmd, articlesCreateCmd, articlesUpdateCmd,
		articlesDeleteCmd, articlesPublishCmd, articlesUnpublishCmd, articlesDraftCmd)
}

// articleManager applies CLI changes to the store and records them the same
// way the admin API does.
type articleManager struct {
	cfg     *config.Config
	store   *content.Store
	auditor *notification.Auditor
	events  publisher.Publisher
	engine  *ai.Engine
	logger  *zap.Logger
}

func withArticles(fn func(ctx context.Context, m *articleManager, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.Global

		notifier, err := newNotifier(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer notifier.Close()

		store, err := content.NewStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		auditor, err := notification.NewAuditor(cfg.Notifications.AuditFile)
		if err != nil {
			return err
		}
		defer auditor.Close()

		events, err := publisher.New(cfg.MQTT, notifier.Logger())
		if err != nil {
			notifier.Warn("event publishing disabled", zap.Error(err))
			events = publisher.Noop{}
		}
		defer events.Close()

		m := &articleManager{
			cfg:     cfg,
			store:   store,
			auditor: auditor,
			events:  events,
			engine:  newEngine(cfg, notifier),
			logger:  notifier.Logger(),
		}
		return fn(cmd.Context(), m, args)
	}
}

func (m *articleManager) writable() error {
	if !m.cfg.Access.ReadOnly {
		return nil
	}
	if err := m.auditor.LogEvent(notification.EventAccessDenied, "cli write while read-only"); err != nil {
		m.logger.Warn("audit write failed", zap.Error(err))
	}
	return errReadOnly
}

func (m *articleManager) create(ctx context.Context, a *content.Article) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.store.Create(ctx, a); err != nil {
		return err
	}
	m.record(notification.EventArticleCreated, publisher.ArticleCreated, a)
	if a.IsPublished {
		m.record(notification.EventArticlePublished, publisher.ArticlePublished, a)
	}
	return nil
}

func (m *articleManager) update(ctx context.Context, a *content.Article) error {
	if err := m.writable(); err != nil {
		return err
	}
	before, err := m.store.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	if err := m.store.Update(ctx, a); err != nil {
		return err
	}
	m.record(notification.EventArticleUpdated, publisher.ArticleUpdated, a)
	switch {
	case a.IsPublished && !before.IsPublished:
		m.record(notification.EventArticlePublished, publisher.ArticlePublished, a)
	case !a.IsPublished && before.IsPublished:
		m.record(notification.EventArticleUnpublished, publisher.ArticleUnpublished, a)
	}
	return nil
}

func (m *articleManager) delete(ctx context.Context, id string) error {
	if err := m.writable(); err != nil {
		return err
	}
	a, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.record(notification.EventArticleDeleted, publisher.ArticleDeleted, a)
	return nil
}

func (m *articleManager) setPublished(ctx context.Context, id string, published bool) error {
	if err := m.writable(); err != nil {
		return err
	}
	if err := m.store.SetPublished(ctx, id, published); err != nil {
		return err
	}
	a, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if published {
		m.record(notification.EventArticlePublished, publisher.ArticlePublished, a)
		fmt.Printf("Published %s\n", a.Title)
	} else {
		m.record(notification.EventArticleUnpublished, publisher.ArticleUnpublished, a)
		fmt.Printf("Unpublished %s\n", a.Title)
	}
	return nil
}

func (m *articleManager) record(auditEvent, eventType string, a *content.Article) {
	if err := m.auditor.LogArticle(auditEvent, cliActor, a.ID, a.Title); err != nil {
		m.logger.Warn("audit write failed", zap.Error(err))
	}
	err := m.events.Publish(publisher.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		ArticleID: a.ID,
		Title:     a.Title,
	})
	if err != nil {
		m.logger.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

// applyArticleFlags copies flag values onto a. When changed is non-nil only
// the flags it reports as set are applied.
func applyArticleFlags(a *content.Article, changed func(string) bool) error {
	set := func(name string) bool { return changed == nil || changed(name) }
	f := articleFlags

	if set("title") {
		a.Title = strings.TrimSpace(f.title)
	}
	if set("content") {
		a.Content = f.body
	}
	if f.bodyFile != "" {
		data, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return fmt.Errorf("reading content file: %w", err)
		}
		a.Content = string(data)
	}
	if set("summary") {
		a.Summary = strings.TrimSpace(f.summary)
	}
	if set("category") {
		category, err := content.ParseCategory(f.category)
		if err != nil {
			return err
		}
		a.Category = category
	}
	if set("tags") {
		a.Tags = content.ParseTags(f.tags)
	}
	if set("thumbnail") {
		a.ThumbnailURL = strings.TrimSpace(f.thumbnail)
	}
	if set("publish") {
		a.IsPublished = f.publish
	}
	return nil
}

func categoryNames() string {
	names := make([]string, len(content.Categories))
	for i, c := range content.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func printArticles(articles []*content.Article) {
	if len(articles) == 0 {
		fmt.Println("No articles.")
		return
	}
	fmt.Printf("%-36s  %-9s  %-18s  %-14s  %s\n", "ID", "STATUS", "KATEGORI", "DIBUAT", "JUDUL")
	for _, a := range articles {
		status := "draft"
		if a.IsPublished {
			status = "published"
		}
		fmt.Printf("%-36s  %-9s  %-18s  %-14s  %s\n",
			a.ID, status, a.Category.Label(), humanize.Time(a.CreatedAt), truncateName(a.Title, 50))
	}
}

func printArticle(a *content.Article) {
	status := "draft"
	if a.IsPublished {
		status = "published"
	}
	fmt.Printf("ID:        %s\n", a.ID)
	fmt.Printf("Judul:     %s\n", a.Title)
	fmt.Printf("Status:    %s\n", status)
	fmt.Printf("Kategori:  %s\n", a.Category.Label())
	fmt.Printf("Tag:       %s\n", strings.Join(a.Tags, ", "))
	if a.ThumbnailURL != "" {
		fmt.Printf("Thumbnail: %s\n", a.ThumbnailURL)
	}
	fmt.Printf("Dibuat:    %s (%s)\n", a.CreatedAt.Local().Format(time.DateTime), humanize.Time(a.CreatedAt))
	fmt.Printf("Diubah:    %s\n", a.UpdatedAt.Local().Format(time.DateTime))
	if a.Summary != "" {
		fmt.Printf("\n%s\n", a.Summary)
	}
	fmt.Printf("\n%s\n", a.Content)
}
