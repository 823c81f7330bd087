package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	domcontent "github.com/kailas-cloud/recfeed/internal/domain/content"
	dominterest "github.com/kailas-cloud/recfeed/internal/domain/interest"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load content items and interest profiles from a JSON fixture",
	Long: `Load a JSON fixture of the form

  {"items": [{"id", "title", "body", "keywords", "published_at"}],
   "interests": {"<user>": {"<term>": <frequency>}}}

into the content pool and the interest store. Existing items with the same
ID are overwritten; existing interest terms not in the fixture are kept.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Path to the JSON fixture (required)")
	_ = ingestCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(ingestCmd)
}

type fixtureItem struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Keywords    []string  `json:"keywords"`
	PublishedAt time.Time `json:"published_at" validate:"required"`
}

type fixture struct {
	Items     []fixtureItem             `json:"items" validate:"dive"`
	Interests map[string]map[string]int `json:"interests" validate:"dive,keys,required,endkeys"`
}

// dataset is a decoded fixture in domain form.
type dataset struct {
	items    []domcontent.Item
	profiles map[string]dominterest.Profile
}

var fixtureValidate = validator.New(validator.WithRequiredStructEnabled())

func parseFixture(r io.Reader) (dataset, error) {
	var f fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return dataset{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fixtureValidate.Struct(&f); err != nil {
		return dataset{}, fmt.Errorf("invalid fixture: %w", err)
	}

	ds := dataset{
		items:    make([]domcontent.Item, 0, len(f.Items)),
		profiles: make(map[string]dominterest.Profile, len(f.Interests)),
	}
	seen := make(map[string]struct{}, len(f.Items))
	for i, it := range f.Items {
		if _, dup := seen[it.ID]; dup {
			return dataset{}, fmt.Errorf("items[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}

		item, err := domcontent.New(it.ID, it.Title, it.Body, it.Keywords, it.PublishedAt)
		if err != nil {
			return dataset{}, fmt.Errorf("items[%d]: %w", i, err)
		}
		ds.items = append(ds.items, item)
	}
	for user, terms := range f.Interests {
		ds.profiles[user] = dominterest.NewProfile(terms)
	}
	return ds, nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	fh, err := os.Open(filepath.Clean(ingestFile))
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer func() { _ = fh.Close() }()

	ds, err := parseFixture(fh)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), currentEnv())
	if err != nil {
		return err
	}
	defer a.close()

	if err := ingest(cmd.Context(), a, ds); err != nil {
		return err
	}
	a.logger.Info("Fixture ingested",
		zap.String("file", ingestFile),
		zap.Int("items", len(ds.items)),
		zap.Int("profiles", len(ds.profiles)),
	)
	return nil
}

func ingest(ctx context.Context, a *app, ds dataset) error {
	if len(ds.items) > 0 {
		if err := a.contents.Save(ctx, ds.items); err != nil {
			return fmt.Errorf("save content: %w", err)
		}
	}
	for user, p := range ds.profiles {
		if err := a.interests.SaveProfile(ctx, user, p); err != nil {
			return fmt.Errorf("save interests for %s: %w", user, err)
		}
	}
	return nil
}
