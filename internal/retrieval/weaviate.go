package retrieval

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/yooncheol/bapsang/internal/config"
)

// WeaviateRetriever runs nearText searches against a Weaviate class
// holding recipe documents with "text" and "source" properties.
type WeaviateRetriever struct {
	client *weaviate.Client
	class  string
}

// NewWeaviateRetriever connects to the configured Weaviate instance.
func NewWeaviateRetriever(cfg config.WeaviateConfig) (*WeaviateRetriever, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("weaviate host is required")
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	class := cfg.Class
	if class == "" {
		class = "RecipeDoc"
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.Host,
		Scheme: scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	return &WeaviateRetriever{client: client, class: class}, nil
}

// recipeClass builds the snippet class schema. The vectorizer is left
// unset so the class inherits the server's default text2vec module,
// which nearText search depends on.
func recipeClass(name string) *models.Class {
	return &models.Class{
		Class:       name,
		Description: "Recipe and dietary knowledge snippets.",
		Properties: []*models.Property{
			{
				Name:        "text",
				DataType:    []string{"text"},
				Description: "Snippet body.",
			},
			{
				Name:         "source",
				DataType:     []string{"text"},
				Description:  "Where the snippet came from.",
				Tokenization: "field",
			},
		},
	}
}

// EnsureSchema creates the class when it does not exist yet. Reports
// whether it was created, so a fresh index can be seeded.
func (r *WeaviateRetriever) EnsureSchema(ctx context.Context) (bool, error) {
	// The client returns an error when the class is missing.
	if _, err := r.client.Schema().ClassGetter().WithClassName(r.class).Do(ctx); err == nil {
		return false, nil
	}

	if err := r.client.Schema().ClassCreator().WithClass(recipeClass(r.class)).Do(ctx); err != nil {
		return false, fmt.Errorf("create class %s: %w", r.class, err)
	}
	return true, nil
}

// Seed batch-imports documents into the class.
func (r *WeaviateRetriever) Seed(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(docs))
	for i, doc := range docs {
		objects[i] = &models.Object{
			Class: r.class,
			Properties: map[string]interface{}{
				"text":   doc.Text,
				"source": doc.Source,
			},
		}
	}

	resp, err := r.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch import: %w", err)
	}
	for _, item := range resp {
		if item.Result != nil && item.Result.Errors != nil && len(item.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch import: %s", item.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Retrieve implements Retriever via GraphQL nearText search. The
// _additional certainty becomes the snippet score.
func (r *WeaviateRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	if topK <= 0 {
		topK = 5
	}

	nearText := r.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "source"},
		{Name: "_additional { certainty }"},
	}

	result, err := r.client.GraphQL().Get().
		WithClassName(r.class).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", result.Errors[0].Message)
	}

	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := data[r.class].([]interface{})
	if !ok {
		return nil, nil
	}

	snippets := make([]Snippet, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}
		s := Snippet{Source: "weaviate"}
		if text, ok := m["text"].(string); ok {
			s.Text = text
		}
		if src, ok := m["source"].(string); ok && src != "" {
			s.Source = src
		}
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				s.Score = certainty
			}
		}
		if s.Text == "" {
			continue
		}
		snippets = append(snippets, s)
	}
	return snippets, nil
}
