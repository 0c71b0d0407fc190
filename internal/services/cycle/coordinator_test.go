package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sockdemon/gutterbot/internal/dependencies/mocks"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/services/combat"
	"github.com/sockdemon/gutterbot/internal/storage/memory"
	"github.com/sockdemon/gutterbot/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	resolver    *combat.Resolver
	coordinator *Coordinator
	ctx         context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.storage = memory.New(s.clock)
	s.resolver = combat.NewResolver(s.storage, s.clock, s.random, combat.DefaultConfig(), testutil.NopLogger())
	s.coordinator = NewCoordinator(s.storage, s.clock, s.random, s.resolver, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SeedPortals(s.ctx, []model.Portal{
		{Name: "The Crusty Sock-Demon", Letter: "A"},
		{Name: "The Moldy Sandwich Golem", Letter: "B"},
		{Name: "The Dust Bunny Behemoth", Letter: "C"},
	}))
}

func (s *CoordinatorSuite) getPlayer(handle string) *model.Player {
	player, err := s.storage.GetPlayer(s.ctx, handle)
	s.Require().NoError(err)
	return player
}

// openAndJoin runs a player through the standard open-and-join flow
func (s *CoordinatorSuite) openAndJoin(handle string) {
	s.coordinator.OpenCycle()
	result, err := s.coordinator.HandleJoin(s.ctx, handle)
	s.Require().NoError(err)
	s.Require().True(result.OK, result.Message)
}

// OpenCycle tests

func (s *CoordinatorSuite) TestOpenCycleAnnouncesEntryWindow() {
	announcement := s.coordinator.OpenCycle()
	s.Equal("The Gutter is open! Use !join to enter. Entry window closes in 5 minutes.", announcement)

	state := s.coordinator.GetState()
	s.True(state.IsOpen)
	s.True(state.EntryWindowActive)
	s.NotNil(state.EntryEndTime)
}

func (s *CoordinatorSuite) TestOpenCycleIsNoOpWhenAlreadyOpen() {
	s.coordinator.OpenCycle()
	s.Equal("The Gutter is already open!", s.coordinator.OpenCycle())
}

func (s *CoordinatorSuite) TestEntryWindowClosesAfterConfiguredDuration() {
	s.coordinator.OpenCycle()
	s.clock.Advance(5 * time.Minute)

	state := s.coordinator.GetState()
	s.True(state.IsOpen)
	s.False(state.EntryWindowActive)
}

func (s *CoordinatorSuite) TestSearchWindowOpensAfterDelay() {
	s.coordinator.OpenCycle()
	s.clock.Advance(10 * time.Minute)

	state := s.coordinator.GetState()
	s.True(state.SearchWindowActive)
	s.NotNil(state.SearchStartTime)
	s.NotNil(state.SearchEndTime)
}

func (s *CoordinatorSuite) TestStagedAnnouncementsFireDuringEntryWindow() {
	var said []string
	s.coordinator.SetAnnouncer(func(message string) {
		said = append(said, message)
	})
	s.coordinator.OpenCycle()

	s.clock.Advance(2 * time.Minute)
	s.Require().Len(said, 1)
	s.Equal("The Gutter is open! Use !join to enter. Entry window closes in 3 minutes.", said[0])

	s.clock.Advance(2 * time.Minute)
	s.Require().Len(said, 2)
	s.Equal("Entry window closes in 1 minute!", said[1])
}

func (s *CoordinatorSuite) TestResetCancelsStagedAnnouncements() {
	var said []string
	s.coordinator.SetAnnouncer(func(message string) {
		said = append(said, message)
	})
	s.coordinator.OpenCycle()
	s.coordinator.ResetCycle()

	s.clock.Advance(10 * time.Minute)
	s.Empty(said)
}

// HandleJoin tests

func (s *CoordinatorSuite) TestJoinFailsWhenClosed() {
	result, err := s.coordinator.HandleJoin(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("The Gutter is not open. Wait for the next cycle.", result.Message)
}

func (s *CoordinatorSuite) TestJoinFailsAfterEntryWindowCloses() {
	s.coordinator.OpenCycle()
	s.clock.Advance(5 * time.Minute)

	result, err := s.coordinator.HandleJoin(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("Entry window is closed. Wait for the next cycle.", result.Message)
}

func (s *CoordinatorSuite) TestJoinCreatesPlayerAndEntersGutter() {
	s.coordinator.OpenCycle()

	result, err := s.coordinator.HandleJoin(s.ctx, "Alice")
	s.Require().NoError(err)
	s.True(result.OK)
	s.Equal("alice enters the Gutter with 100 HP!", result.Message)

	alice := s.getPlayer("alice")
	s.True(alice.InGutter)
	s.Equal(model.MaxHP, alice.HP)
	s.NotNil(alice.GutterJoinedAt)
}

func (s *CoordinatorSuite) TestJoinFailsWhenAlreadyInGutter() {
	s.openAndJoin("alice")

	result, err := s.coordinator.HandleJoin(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("You are already in the Gutter!", result.Message)
}

func (s *CoordinatorSuite) TestRejoinRestoresFullHP() {
	s.openAndJoin("alice")
	_, err := s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerPatch{
		HP:       model.Ptr(10),
		InGutter: model.Ptr(false),
	})
	s.Require().NoError(err)

	result, err := s.coordinator.HandleJoin(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(result.OK)
	s.Equal(model.MaxHP, s.getPlayer("alice").HP)
}

// HandleSearch tests

func (s *CoordinatorSuite) TestSearchFailsBeforeWindowOpens() {
	s.openAndJoin("alice")

	result, err := s.coordinator.HandleSearch(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("Search window is not active. Wait for the signal.", result.Message)
}

func (s *CoordinatorSuite) TestSearchAssignsPortalAndWhispers() {
	s.openAndJoin("alice")
	s.clock.Advance(10 * time.Minute)
	s.random.QueueIntn(1)

	result, err := s.coordinator.HandleSearch(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(result.OK)
	s.Equal("You found Portal B. Kill the The Moldy Sandwich Golem to escape!", result.Message)
	s.Equal(result.Message, result.Whisper)

	alice := s.getPlayer("alice")
	s.Equal("B", alice.MobTarget)
	s.Equal(0, alice.MobKills)
}

func (s *CoordinatorSuite) TestSearchFailsWhileAlreadyHunting() {
	s.openAndJoin("alice")
	s.clock.Advance(10 * time.Minute)
	s.random.QueueIntn(0)

	_, err := s.coordinator.HandleSearch(s.ctx, "alice")
	s.Require().NoError(err)

	result, err := s.coordinator.HandleSearch(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("You are already hunting A. Use !fight A to engage.", result.Message)
}

func (s *CoordinatorSuite) TestSearchFailsForUnknownPlayer() {
	s.coordinator.OpenCycle()
	s.clock.Advance(10 * time.Minute)

	result, err := s.coordinator.HandleSearch(s.ctx, "ghost")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("User not found. Use !join to enter the Gutter.", result.Message)
}

func (s *CoordinatorSuite) TestSearchFailsWithUnseededPortals() {
	s.storage = memory.New(s.clock)
	s.resolver = combat.NewResolver(s.storage, s.clock, s.random, combat.DefaultConfig(), testutil.NopLogger())
	s.coordinator = NewCoordinator(s.storage, s.clock, s.random, s.resolver, DefaultConfig(), testutil.NopLogger())
	s.openAndJoin("alice")
	s.clock.Advance(10 * time.Minute)

	result, err := s.coordinator.HandleSearch(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("No mobs available. Try again later.", result.Message)
}

// HandleFight tests

func (s *CoordinatorSuite) startHunt(handle, wantLetter string, portalIdx int) {
	s.openAndJoin(handle)
	s.clock.Advance(10 * time.Minute)
	s.random.QueueIntn(portalIdx)
	result, err := s.coordinator.HandleSearch(s.ctx, handle)
	s.Require().NoError(err)
	s.Require().True(result.OK, result.Message)
	s.Require().Equal(wantLetter, s.getPlayer(handle).MobTarget)
}

func (s *CoordinatorSuite) TestFightFailsWithoutPortal() {
	s.openAndJoin("alice")

	result, err := s.coordinator.HandleFight(s.ctx, "alice", "A")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("You haven't found a portal yet. Use !search first.", result.Message)
}

func (s *CoordinatorSuite) TestFightFailsAgainstWrongPortal() {
	s.startHunt("alice", "A", 0)

	result, err := s.coordinator.HandleFight(s.ctx, "alice", "B")
	s.Require().NoError(err)
	s.False(result.OK)
	s.Equal("You are hunting Portal A, not B.", result.Message)
	s.Equal(0, s.getPlayer("alice").MobKills)
}

func (s *CoordinatorSuite) TestFightAccumulatesHits() {
	s.startHunt("alice", "A", 0)

	result, err := s.coordinator.HandleFight(s.ctx, "alice", "A")
	s.Require().NoError(err)
	s.True(result.OK)
	s.Equal("alice strikes the A! Hit 1/3 needed.", result.Message)
	s.False(result.Extracted)
	s.Equal(1, s.getPlayer("alice").MobKills)
}

func (s *CoordinatorSuite) TestThirdHitExtractsWithBonusAndClearsBounties() {
	s.startHunt("alice", "A", 0)
	_, err := s.storage.AdjustScum(s.ctx, "alice", 55)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "alice",
		Amount:       30,
		PlacedBy:     "bob",
	}))

	for i := 0; i < 2; i++ {
		_, err := s.coordinator.HandleFight(s.ctx, "alice", "A")
		s.Require().NoError(err)
	}

	result, err := s.coordinator.HandleFight(s.ctx, "alice", "A")
	s.Require().NoError(err)
	s.True(result.OK)
	s.True(result.Extracted)
	s.Equal("alice defeated the A and escaped the Gutter!", result.Message)
	s.Equal("Congratulations! You escaped the Gutter with your Scum intact!", result.Whisper)

	alice := s.getPlayer("alice")
	s.False(alice.InGutter)
	s.Empty(alice.MobTarget)
	s.Equal(0, alice.MobKills)
	// 10% survivor bonus on the pre-bonus balance, floored
	s.Equal(60, alice.Scum)

	total, err := s.storage.TotalBounty(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, total)
}

func (s *CoordinatorSuite) TestExtractionBonusFloorsFractions() {
	s.startHunt("alice", "A", 0)
	_, err := s.storage.AdjustScum(s.ctx, "alice", 19)
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, err := s.coordinator.HandleFight(s.ctx, "alice", "A")
		s.Require().NoError(err)
	}

	s.Equal(20, s.getPlayer("alice").Scum)
}

// HandleStats tests

func (s *CoordinatorSuite) TestStatsForLobbyPlayer() {
	s.openAndJoin("alice")
	_, err := s.storage.UpdatePlayer(s.ctx, "alice", model.PlayerPatch{InGutter: model.Ptr(false)})
	s.Require().NoError(err)

	result, err := s.coordinator.HandleStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(result.OK)
	s.Equal("alice | HP: 100/100 | Scum: 0 | Status: IN LOBBY", result.Message)
}

func (s *CoordinatorSuite) TestStatsIncludeHuntAndBounty() {
	s.startHunt("alice", "A", 0)
	_, err := s.storage.AdjustScum(s.ctx, "alice", 42)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.PlaceBounty(s.ctx, &model.Bounty{
		TargetHandle: "alice",
		Amount:       25,
		PlacedBy:     "bob",
	}))

	result, err := s.coordinator.HandleStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice | HP: 100/100 | Scum: 42 | Status: IN GUTTER | Hunting: A (0/3) | Bounty: 25 Scum", result.Message)
}

func (s *CoordinatorSuite) TestStatsFailsForUnknownPlayer() {
	result, err := s.coordinator.HandleStats(s.ctx, "ghost")
	s.Require().NoError(err)
	s.False(result.OK)
}

// GetStatus tests

func (s *CoordinatorSuite) TestStatusWhenClosed() {
	s.Equal("The Gutter is closed. Next opening in 30 minutes.", s.coordinator.GetStatus())
}

func (s *CoordinatorSuite) TestStatusDuringEntryWindow() {
	s.coordinator.OpenCycle()
	s.clock.Advance(2 * time.Minute)
	s.Equal("The Gutter is open! Entry window closes in 3 minutes.", s.coordinator.GetStatus())
}

func (s *CoordinatorSuite) TestStatusDuringSearchWindow() {
	s.coordinator.OpenCycle()
	s.clock.Advance(10 * time.Minute)
	s.Equal("The Gutter is open! Search for portals to escape.", s.coordinator.GetStatus())
}

func (s *CoordinatorSuite) TestStatusBetweenWindows() {
	s.coordinator.OpenCycle()
	s.clock.Advance(7 * time.Minute)
	s.Equal("The Gutter is open but entry window has closed.", s.coordinator.GetStatus())
}

// ResetCycle tests

func (s *CoordinatorSuite) TestResetReturnsCycleToClosed() {
	s.coordinator.OpenCycle()
	s.coordinator.ResetCycle()

	state := s.coordinator.GetState()
	s.False(state.IsOpen)
	s.False(state.EntryWindowActive)
	s.False(state.SearchWindowActive)
	s.Nil(state.EntryEndTime)
	s.Equal("The Gutter is closed. Next opening in 30 minutes.", s.coordinator.GetStatus())
}

func (s *CoordinatorSuite) TestResetCancelsPhaseTimers() {
	s.coordinator.OpenCycle()
	s.coordinator.ResetCycle()

	s.clock.Advance(15 * time.Minute)
	state := s.coordinator.GetState()
	s.False(state.SearchWindowActive)
}

func (s *CoordinatorSuite) TestResetLeavesPlayersStranded() {
	s.openAndJoin("alice")
	s.coordinator.ResetCycle()

	// Player flags are untouched until the player next acts
	s.True(s.getPlayer("alice").InGutter)
}
