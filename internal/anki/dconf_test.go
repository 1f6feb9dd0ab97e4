package anki_test

import (
	"context"

	"github.com/vytor/ankistore/internal/errors"
	"github.com/vytor/ankistore/internal/repository/sqlite"
)

func (s *CollectionSuite) TestSaveDeckConfigRequiresName() {
	_, err := s.coll.SaveDeckConfig(context.Background(), map[string]any{"replayq": false})
	s.Require().Error(err)
	appErr, ok := err.(*errors.AppError)
	s.Require().True(ok)
	s.Assert().Equal(errors.ErrCodeValidation, appErr.Code)
}

func (s *CollectionSuite) TestSaveDeckConfigAndLookup() {
	ctx := context.Background()

	id, err := s.coll.SaveDeckConfig(ctx, map[string]any{
		"name": "Aggressive",
		"rev":  map[string]any{"perDay": float64(500)},
	})
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(1), "fresh groups never collide with the pinned default")

	names, err := s.coll.DeckConfigNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(id, names["Aggressive"])
	s.Assert().Equal(int64(1), names["Default"])
}

func (s *CollectionSuite) TestSaveDeckConfigPinsExplicitID() {
	ctx := context.Background()

	id, err := s.coll.SaveDeckConfig(ctx, map[string]any{
		"name": "Pinned",
		"id":   float64(42),
	})
	s.Require().NoError(err)
	s.Assert().Equal(int64(42), id)
}

func (s *CollectionSuite) TestSetDeckConfigID() {
	ctx := context.Background()

	id, err := s.coll.SaveDeckConfig(ctx, map[string]any{"name": "Alt"})
	s.Require().NoError(err)

	edited, err := s.coll.SetDeckConfigID(ctx, []string{"Default"}, id)
	s.Require().NoError(err)
	s.Assert().True(edited)

	dconf, err := s.coll.GetDeckConfigByDeckName(ctx, "Default")
	s.Require().NoError(err)
	s.Assert().Equal(id, dconf.ID)

	edited, err = s.coll.SetDeckConfigID(ctx, []string{"No Such Deck"}, id)
	s.Require().NoError(err)
	s.Assert().False(edited, "unknown deck names edit nothing")
}

func (s *CollectionSuite) TestCloneDeckConfigIDIsIndependent() {
	ctx := context.Background()

	cloneID, err := s.coll.CloneDeckConfigID(ctx, "Copy of Default", 1)
	s.Require().NoError(err)
	s.Assert().NotEqual(int64(1), cloneID)

	names, err := s.coll.DeckConfigNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(cloneID, names["Copy of Default"])

	// Mutating the clone's nested policy must not leak into the source.
	col, err := sqlite.NewColRepository(s.db.DB).Get(ctx)
	s.Require().NoError(err)
	clone, err := col.DeckConfigByID(cloneID)
	s.Require().NoError(err)
	clone.New.Delays = append(clone.New.Delays, 99)

	src, err := col.DeckConfigByID(1)
	s.Require().NoError(err)
	s.Assert().NotContains(src.New.Delays, float64(99))
}

func (s *CollectionSuite) TestCloneDeckConfigIDUnknownSource() {
	_, err := s.coll.CloneDeckConfigID(context.Background(), "ghost", 404)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *CollectionSuite) TestRemoveDeckConfigID() {
	ctx := context.Background()

	id, err := s.coll.SaveDeckConfig(ctx, map[string]any{"name": "Throwaway"})
	s.Require().NoError(err)

	s.Require().NoError(s.coll.RemoveDeckConfigID(ctx, id))

	names, err := s.coll.DeckConfigNamesAndIDs(ctx)
	s.Require().NoError(err)
	s.Assert().NotContains(names, "Throwaway")

	err = s.coll.RemoveDeckConfigID(ctx, id)
	s.Assert().True(errors.IsNotFound(err), "second removal finds nothing")
}
