package wordbank

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mcoot/impostorgame/internal/dependencies/random"
	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage"
)

// Pick is a secret word drawn for a room
type Pick struct {
	Category string // Canonical category name as stored
	Word     string
}

// Service stores themed word lists and draws secret words from them
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new word bank service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger,
	}
}

// LoadFromFile loads categories from a file of "Category: word" lines.
// Blank lines and lines starting with '#' are ignored.
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.Load(ctx, file)
}

// Load reads "Category: word" lines from r and replaces each category found
func (s *Service) Load(ctx context.Context, r io.Reader) error {
	byCategory, err := parse(r)
	if err != nil {
		return err
	}

	for category, words := range byCategory {
		if err := s.LoadWords(ctx, category, words); err != nil {
			return err
		}
	}
	s.logger.Info("word bank loaded", slog.Int("categories", len(byCategory)))
	return nil
}

// LoadWords replaces the words of one category
func (s *Service) LoadWords(ctx context.Context, category string, words []string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category name is empty")
	}
	return s.storage.SaveCategoryWords(ctx, category, words)
}

// Categories lists the categories that have at least one word
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.storage.ListCategories(ctx)
}

// PickWord draws a word uniformly at random from the theme.
// The theme matches case-insensitively against stored categories.
func (s *Service) PickWord(ctx context.Context, theme string) (Pick, error) {
	category, err := s.resolveCategory(ctx, theme)
	if err != nil {
		return Pick{}, err
	}

	words, err := s.storage.GetCategoryWords(ctx, category)
	if err != nil {
		return Pick{}, err
	}
	if len(words) == 0 {
		return Pick{}, fmt.Errorf("%w: %q", model.ErrNoWordsAvailable, theme)
	}

	// Storage order is not guaranteed
	sort.Strings(words)
	return Pick{Category: category, Word: words[s.random.Intn(len(words))]}, nil
}

func (s *Service) resolveCategory(ctx context.Context, theme string) (string, error) {
	theme = strings.TrimSpace(theme)
	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if c == theme {
			return c, nil
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c, theme) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", model.ErrNoWordsAvailable, theme)
}

func parse(r io.Reader) (map[string][]string, error) {
	byCategory := make(map[string][]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		category, word, ok := strings.Cut(line, ":")
		category, word = strings.TrimSpace(category), strings.TrimSpace(word)
		if !ok || category == "" || word == "" {
			return nil, fmt.Errorf("line %d: expected \"Category: word\", got %q", lineNo, line)
		}
		byCategory[category] = append(byCategory[category], word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return byCategory, nil
}

// ServiceInterface is the word bank as seen by the room orchestrator
type ServiceInterface interface {
	LoadFromFile(ctx context.Context, path string) error
	Load(ctx context.Context, r io.Reader) error
	LoadWords(ctx context.Context, category string, words []string) error
	Categories(ctx context.Context) ([]string, error)
	PickWord(ctx context.Context, theme string) (Pick, error)
}

var _ ServiceInterface = (*Service)(nil)
