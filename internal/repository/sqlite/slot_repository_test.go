package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashcardhelper/internal/repository"
	"github.com/vytor/flashcardhelper/internal/repository/sqlite"
	"github.com/vytor/flashcardhelper/internal/testutil"
)

type SlotRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SlotRepository
}

func (s *SlotRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSlotRepository(s.db)
}

func (s *SlotRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SlotRepositorySuite) TestGetMissing() {
	value, found, err := s.repo.Get(context.Background(), "flashcards")
	s.Require().NoError(err)
	s.False(found)
	s.Empty(value)
}

func (s *SlotRepositorySuite) TestPutAndGet() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Put(ctx, "ai_provider", `"claude"`))

	value, found, err := s.repo.Get(ctx, "ai_provider")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(`"claude"`, value)
}

func (s *SlotRepositorySuite) TestPutOverwrites() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Put(ctx, "flashcards", `[]`))
	s.Require().NoError(s.repo.Put(ctx, "flashcards", `[{"id":1,"question":"q","answer":"a"}]`))

	value, _, err := s.repo.Get(ctx, "flashcards")
	s.Require().NoError(err)
	s.Equal(`[{"id":1,"question":"q","answer":"a"}]`, value)

	var rows int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM slots`).Scan(&rows))
	s.Equal(1, rows)
}

func (s *SlotRepositorySuite) TestDelete() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Put(ctx, "gemini_api_key", `"g"`))
	s.Require().NoError(s.repo.Put(ctx, "claude_api_key", `"c"`))

	s.Require().NoError(s.repo.Delete(ctx, "claude_api_key"))
	s.Require().NoError(s.repo.Delete(ctx, "does_not_exist"))

	_, found, err := s.repo.Get(ctx, "claude_api_key")
	s.Require().NoError(err)
	s.False(found)

	value, found, err := s.repo.Get(ctx, "gemini_api_key")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(`"g"`, value)
}

func TestSlotRepositorySuite(t *testing.T) {
	suite.Run(t, new(SlotRepositorySuite))
}
