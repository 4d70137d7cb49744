package wordbank

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/impostorgame/internal/dependencies/mocks"
	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage/memory"
	"github.com/mcoot/impostorgame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestLoadParsesCategories() {
	input := `
# comment
Comidas: Paella
Comidas: Tacos
Lugares:  Playa

Fútbol: Penalti
`
	s.Require().NoError(s.service.Load(s.ctx, strings.NewReader(input)))

	categories, err := s.service.Categories(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Comidas", "Fútbol", "Lugares"}, categories)

	words, err := s.storage.GetCategoryWords(s.ctx, "Comidas")
	s.Require().NoError(err)
	s.Equal([]string{"Paella", "Tacos"}, words)
}

func (s *ServiceSuite) TestLoadRejectsMalformedLine() {
	err := s.service.Load(s.ctx, strings.NewReader("Comidas Paella\n"))
	s.ErrorContains(err, "line 1")
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "words.txt")
	s.Require().NoError(os.WriteFile(path, []byte("Lugares: Museo\nLugares: Playa\n"), 0o600))

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	words, err := s.storage.GetCategoryWords(s.ctx, "Lugares")
	s.Require().NoError(err)
	s.Len(words, 2)
}

func (s *ServiceSuite) TestLoadFromFileMissing() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "nope.txt"))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *ServiceSuite) TestPickWordUsesRandomIndex() {
	s.Require().NoError(s.service.LoadWords(s.ctx, "Comidas", []string{"Tacos", "Paella", "Sushi"}))
	s.random.QueueIntn(2)

	pick, err := s.service.PickWord(s.ctx, "Comidas")
	s.Require().NoError(err)
	s.Equal("Comidas", pick.Category)
	// Sorted: Paella, Sushi, Tacos
	s.Equal("Tacos", pick.Word)
}

func (s *ServiceSuite) TestPickWordCaseInsensitiveTheme() {
	s.Require().NoError(s.service.LoadWords(s.ctx, "Fútbol", []string{"Penalti"}))

	pick, err := s.service.PickWord(s.ctx, " fútbol ")
	s.Require().NoError(err)
	s.Equal("Fútbol", pick.Category)
	s.Equal("Penalti", pick.Word)
}

func (s *ServiceSuite) TestPickWordUnknownTheme() {
	_, err := s.service.PickWord(s.ctx, "Planetas")
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}

func (s *ServiceSuite) TestPickWordEmptyTheme() {
	s.Require().NoError(s.service.LoadWords(s.ctx, "Comidas", nil))

	_, err := s.service.PickWord(s.ctx, "Comidas")
	s.ErrorIs(err, model.ErrNoWordsAvailable)
}
