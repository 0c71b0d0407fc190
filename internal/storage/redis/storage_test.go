package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/sockdemon/gutterbot/internal/dependencies/mocks"
	"github.com/sockdemon/gutterbot/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	clock   *mocks.MockClock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = NewWithClient(client, DefaultConfig(), s.clock)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestCreateAndGetPlayer() {
	created, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", created.Handle)
	s.Equal(model.MaxHP, created.HP)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Handle)
	s.Equal(model.MaxHP, retrieved.HP)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestCreatePlayerIsIdempotent() {
	_, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)
	_, err = s.storage.AdjustScum(s.ctx, "alice", 75)
	s.Require().NoError(err)

	again, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(75, again.Scum)
}

func (s *StorageSuite) TestHandlesAreNormalized() {
	_, err := s.storage.CreatePlayer(s.ctx, "Alice")
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Equal("alice", retrieved.Handle)
}

func (s *StorageSuite) TestUpdatePlayerAppliesPartialPatch() {
	_, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)

	updated, err := s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerPatch{
		HP:        model.Ptr(55),
		MobTarget: model.Ptr("C"),
	})
	s.Require().NoError(err)
	s.Equal(55, updated.HP)
	s.Equal("C", updated.MobTarget)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(55, retrieved.HP)
	s.Equal("C", retrieved.MobTarget)
}

func (s *StorageSuite) TestUpdatePlayerNotFound() {
	_, err := s.storage.UpdatePlayer(s.ctx, "nonexistent", model.PlayerPatch{HP: model.Ptr(1)})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestAdjustScumFloorsAtZero() {
	_, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)
	_, err = s.storage.AdjustScum(s.ctx, "alice", 25)
	s.Require().NoError(err)

	adjusted, err := s.storage.AdjustScum(s.ctx, "alice", -999)
	s.Require().NoError(err)
	s.Equal(0, adjusted.Scum)
}

func (s *StorageSuite) TestUpdatePlayerStampsUpdatedAt() {
	created, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	updated, err := s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerPatch{HP: model.Ptr(1)})
	s.Require().NoError(err)
	s.True(updated.UpdatedAt.After(created.UpdatedAt))
}

// In-gutter index tests

func (s *StorageSuite) TestListActivePlayersTracksGutterMembership() {
	for _, handle := range []string{"alice", "bob"} {
		_, err := s.storage.CreatePlayer(s.ctx, handle)
		s.Require().NoError(err)
		_, err = s.storage.UpdatePlayer(s.ctx, handle, model.PlayerPatch{InGutter: model.Ptr(true)})
		s.Require().NoError(err)
	}

	active, err := s.storage.ListActivePlayers(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 2)

	_, err = s.storage.UpdatePlayer(s.ctx, "bob", model.PlayerPatch{InGutter: model.Ptr(false)})
	s.Require().NoError(err)

	active, err = s.storage.ListActivePlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("alice", active[0].Handle)
}

func (s *StorageSuite) TestListActivePlayersEmptyWhenNoneJoined() {
	_, err := s.storage.CreatePlayer(s.ctx, "alice")
	s.Require().NoError(err)

	active, err := s.storage.ListActivePlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(active)
}

// Bounty tests

func (s *StorageSuite) TestBountiesAccumulatePerTarget() {
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "Bob", Amount: 30, PlacedBy: "alice",
	}))
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "bob", Amount: 45, PlacedBy: "carol",
	}))

	total, err := s.storage.TotalBounty(s.ctx, "BOB")
	s.Require().NoError(err)
	s.Equal(75, total)
}

func (s *StorageSuite) TestClearBountiesOnlyAffectsTarget() {
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "bob", Amount: 30, PlacedBy: "alice",
	}))
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "carol", Amount: 60, PlacedBy: "alice",
	}))

	s.Require().NoError(s.storage.ClearBounties(s.ctx, "bob"))

	total, err := s.storage.TotalBounty(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(0, total)

	total, err = s.storage.TotalBounty(s.ctx, "carol")
	s.Require().NoError(err)
	s.Equal(60, total)
}

// Portal catalog tests

func (s *StorageSuite) TestListPortalsBeforeSeeding() {
	_, err := s.storage.ListPortals(s.ctx)
	s.ErrorIs(err, model.ErrNoPortals)
}

func (s *StorageSuite) TestSeedAndListPortals() {
	portals := []model.Portal{
		{Name: "The Crusty Sock-Demon", Letter: "A"},
		{Name: "The Sticky Floor Horror", Letter: "E"},
	}
	s.Require().NoError(s.storage.SeedPortals(s.ctx, portals))

	listed, err := s.storage.ListPortals(s.ctx)
	s.Require().NoError(err)
	s.Equal(portals, listed)
}
