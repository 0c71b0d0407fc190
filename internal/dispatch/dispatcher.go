package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sockdemon/gutterbot/internal/chat"
	"github.com/sockdemon/gutterbot/internal/model"
	"github.com/sockdemon/gutterbot/internal/services/combat"
	"github.com/sockdemon/gutterbot/internal/services/cycle"
	"github.com/sockdemon/gutterbot/internal/services/mobs"
)

// Dispatcher maps inbound chat commands to core game operations and
// renders the results back to the chat transport. Malformed arguments are
// rejected here before any core logic runs, and internal errors are caught
// and logged so one failing command never takes down the chat loop.
type Dispatcher struct {
	combat    *combat.Resolver
	cycle     *cycle.Coordinator
	registry  *mobs.Registry
	spawner   *mobs.Spawner
	speaker   chat.Speaker
	whisperer chat.Whisperer
	logger    *slog.Logger
}

// New creates a new command dispatcher
func New(
	combatResolver *combat.Resolver,
	cycleCoordinator *cycle.Coordinator,
	registry *mobs.Registry,
	spawner *mobs.Spawner,
	speaker chat.Speaker,
	whisperer chat.Whisperer,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		combat:    combatResolver,
		cycle:     cycleCoordinator,
		registry:  registry,
		spawner:   spawner,
		speaker:   speaker,
		whisperer: whisperer,
		logger:    logger,
	}
}

// Handle processes one inbound chat message. Non-commands are ignored.
func (d *Dispatcher) Handle(ctx context.Context, msg chat.Message) {
	verb, args, ok := ParseCommand(msg.Text)
	if !ok {
		return
	}

	var err error
	switch verb {
	case "!join":
		err = d.say(d.cycle.HandleJoin(ctx, msg.Handle))
	case "!cast":
		err = d.handleCast(ctx, msg, args)
	case "!stats":
		err = d.say(d.cycle.HandleStats(ctx, msg.Handle))
	case "!heal", "!slurp":
		err = d.say(d.combat.HandleHeal(ctx, msg.Handle))
	case "!bounty":
		err = d.handleBounty(ctx, msg, args)
	case "!search":
		err = d.handleSearch(ctx, msg)
	case "!fight":
		err = d.handleFight(ctx, msg, args)
	case "!gutter":
		d.speaker.Say(d.cycle.GetStatus())
	case "!mobs":
		d.speaker.Say(d.mobsList())
	case "!fightmob":
		err = d.handleFightMob(ctx, msg, args)
	case "!reset":
		if msg.IsMod {
			d.handleReset()
		}
	case "!forceopen":
		if msg.IsMod {
			d.handleForceOpen()
		}
	case "!spawnmob":
		if msg.IsMod {
			d.handleSpawnMob()
		}
	default:
		return
	}

	if err != nil {
		d.logger.Error("command failed",
			slog.String("verb", verb),
			slog.String("handle", msg.Handle),
			slog.String("error", err.Error()),
		)
		d.speaker.Say(fmt.Sprintf("@%s, an error occurred. Try again later.", msg.Handle))
	}
}

// say renders a core result to the channel, passing internal errors through
func (d *Dispatcher) say(result model.Result, err error) error {
	if err != nil {
		return err
	}
	d.speaker.Say(result.Message)
	return nil
}

func (d *Dispatcher) handleCast(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) == 0 {
		d.speaker.Say(fmt.Sprintf("@%s, usage: !cast @target", msg.Handle))
		return nil
	}

	target := StripMention(args[0])
	if !ValidHandle(target) {
		d.speaker.Say(fmt.Sprintf("@%s, invalid target username.", msg.Handle))
		return nil
	}

	return d.say(d.combat.ResolveAttack(ctx, msg.Handle, target))
}

func (d *Dispatcher) handleBounty(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) < 2 {
		d.speaker.Say(fmt.Sprintf("@%s, usage: !bounty @target amount", msg.Handle))
		return nil
	}

	target := StripMention(args[0])
	amount, convErr := strconv.Atoi(args[1])
	if !ValidHandle(target) || convErr != nil || amount <= 0 {
		d.speaker.Say(fmt.Sprintf("@%s, invalid bounty format.", msg.Handle))
		return nil
	}

	return d.say(d.combat.HandleBounty(ctx, msg.Handle, target, amount))
}

func (d *Dispatcher) handleSearch(ctx context.Context, msg chat.Message) error {
	result, err := d.cycle.HandleSearch(ctx, msg.Handle)
	if err != nil {
		return err
	}

	if result.OK && result.Whisper != "" {
		if werr := d.whisperer.Whisper(ctx, msg.Handle, result.Whisper); werr != nil {
			d.logger.Warn("whisper delivery failed",
				slog.String("handle", msg.Handle),
				slog.String("error", werr.Error()),
			)
		}
	}

	d.speaker.Say(result.Message)
	return nil
}

func (d *Dispatcher) handleFight(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) == 0 {
		d.speaker.Say(fmt.Sprintf("@%s, usage: !fight [Letter]", msg.Handle))
		return nil
	}

	letter := strings.ToUpper(args[0])
	if !ValidPortalLetter(letter) {
		d.speaker.Say(fmt.Sprintf("@%s, invalid mob letter. Use A-E.", msg.Handle))
		return nil
	}

	result, err := d.cycle.HandleFight(ctx, msg.Handle, letter)
	if err != nil {
		return err
	}

	d.speaker.Say(result.Message)

	if result.Extracted && result.Whisper != "" {
		if werr := d.whisperer.Whisper(ctx, msg.Handle, result.Whisper); werr != nil {
			d.logger.Warn("whisper delivery failed",
				slog.String("handle", msg.Handle),
				slog.String("error", werr.Error()),
			)
		}
	}
	return nil
}

func (d *Dispatcher) handleFightMob(ctx context.Context, msg chat.Message, args []string) error {
	if len(args) == 0 {
		d.speaker.Say(fmt.Sprintf("@%s, usage: !fightmob [mob_id]", msg.Handle))
		return nil
	}

	return d.say(d.registry.Fight(ctx, msg.Handle, args[0]))
}

func (d *Dispatcher) mobsList() string {
	var lines []string
	for listing := range d.registry.ListActive() {
		lines = append(lines, fmt.Sprintf("• %s (%d%% HP) %s - !fightmob %s",
			listing.Name, listing.HPPercent, listing.Location, listing.ID))
	}

	if len(lines) == 0 {
		return "No mobs are currently roaming. Wait for the next spawn!"
	}
	return "Active Mobs:\n" + strings.Join(lines, "\n")
}

func (d *Dispatcher) handleReset() {
	d.combat.ClearAllTimeouts()
	d.cycle.ResetCycle()
	d.spawner.Stop()
	d.registry.Clear()
	d.speaker.Say("System reset complete.")
}

func (d *Dispatcher) handleForceOpen() {
	d.speaker.Say(d.cycle.OpenCycle())
	d.spawner.Start()
}

func (d *Dispatcher) handleSpawnMob() {
	if announcement, ok := d.spawner.SpawnNow(); ok {
		d.speaker.Say(announcement)
	} else {
		d.speaker.Say("Too many mobs are already roaming.")
	}
}
