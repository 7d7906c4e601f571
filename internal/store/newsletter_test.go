package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/trentd187/tournament-finder/internal/models"
	"github.com/trentd187/tournament-finder/internal/testutil"
)

type NewsletterStoreSuite struct {
	suite.Suite
	store *NewsletterStore
	ctx   context.Context
}

func TestNewsletterStoreSuite(t *testing.T) {
	suite.Run(t, new(NewsletterStoreSuite))
}

func (s *NewsletterStoreSuite) SetupTest() {
	s.store = NewNewsletterStore(testutil.NewSQLiteDB(s.T()))
	s.ctx = context.Background()
}

func (s *NewsletterStoreSuite) TestSubscribe() {
	s.Run("stores the normalized email with a subscription time", func() {
		before := time.Now().Add(-time.Second)
		sub, err := s.store.Subscribe(s.ctx, "  Reader@Example.com ")
		s.Require().NoError(err)
		s.Equal("reader@example.com", sub.Email)
		s.True(sub.SubscribedAt.After(before))
	})

	s.Run("rejects a malformed address", func() {
		_, err := s.store.Subscribe(s.ctx, "reader-at-example")
		s.Require().ErrorIs(err, models.ErrInvalidEmail)
	})
}

// TestEmailUniqueness verifies case- and whitespace-insensitive uniqueness.
func (s *NewsletterStoreSuite) TestEmailUniqueness() {
	s.Run("same address differing only in case is a duplicate", func() {
		_, err := s.store.Subscribe(s.ctx, "a@b.com")
		s.Require().NoError(err)

		_, err = s.store.Subscribe(s.ctx, "A@B.com")
		s.Require().Error(err)
		s.ErrorIs(err, ErrDuplicateEmail)
	})

	s.Run("surrounding whitespace is a duplicate", func() {
		_, err := s.store.Subscribe(s.ctx, "c@d.com")
		s.Require().NoError(err)

		_, err = s.store.Subscribe(s.ctx, " c@d.com\t")
		s.ErrorIs(err, ErrDuplicateEmail)
	})

	s.Run("different addresses coexist", func() {
		_, err := s.store.Subscribe(s.ctx, "one@example.com")
		s.Require().NoError(err)
		_, err = s.store.Subscribe(s.ctx, "two@example.com")
		s.Require().NoError(err)
	})
}

func (s *NewsletterStoreSuite) TestFindByEmail() {
	created, err := s.store.Subscribe(s.ctx, "find@me.com")
	s.Require().NoError(err)

	found, err := s.store.FindByEmail(s.ctx, " FIND@me.com")
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)

	_, err = s.store.FindByEmail(s.ctx, "missing@me.com")
	s.ErrorIs(err, ErrNotFound)
}
